package cli

import (
	"context"

	"htmlpipe/internal/proxy"
)

func watchToggle(context.Context, *proxy.Filter) func() { return func() {} }
