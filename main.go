package main

import "htmlpipe/internal/cli"

func main() {
	cli.Execute()
}
