package tools

// ToolID names an external renderer executable.
type ToolID string

const (
	ToolW3m    ToolID = "w3m"
	ToolLynx   ToolID = "lynx"
	ToolLinks  ToolID = "links"
	ToolPandoc ToolID = "pandoc"
)

type ToolInfo struct {
	ID          ToolID
	DisplayName string
	Binaries    []string // candidate binary names in PATH
	VersionArgs [][]string
}

// CheckResult is what CheckTool found out about one tool.
type CheckResult struct {
	Installed bool
	Path      string
	Version   string
	Source    string // which invocation produced the version
	Err       string
}
