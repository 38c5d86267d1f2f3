package tools

var Tools = []ToolInfo{
	{
		ID:          ToolW3m,
		DisplayName: "w3m",
		Binaries:    []string{"w3m"},
		VersionArgs: [][]string{{"-version"}},
	},
	{
		ID:          ToolLynx,
		DisplayName: "Lynx",
		Binaries:    []string{"lynx"},
		VersionArgs: [][]string{{"-version"}},
	},
	{
		ID:          ToolLinks,
		DisplayName: "Links",
		Binaries:    []string{"links", "links2"},
		VersionArgs: [][]string{{"-version"}},
	},
	{
		ID:          ToolPandoc,
		DisplayName: "Pandoc",
		Binaries:    []string{"pandoc"},
		VersionArgs: [][]string{{"--version"}},
	},
}

// Lookup returns the known tool whose binaries include command.
func Lookup(command string) (ToolInfo, bool) {
	for _, t := range Tools {
		if string(t.ID) == command {
			return t, true
		}
		for _, b := range t.Binaries {
			if b == command {
				return t, true
			}
		}
	}
	return ToolInfo{}, false
}
