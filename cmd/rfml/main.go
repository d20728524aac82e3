// Command rfml inspects and edits RFML convention files.
package main

import (
	"os"

	"github.com/maruel/subcommands"
)

func application() *subcommands.DefaultApplication {
	return &subcommands.DefaultApplication{
		Name:  "rfml",
		Title: "Tool for RFML solver input and output files.",
		Commands: []*subcommands.Command{
			subcommands.CmdHelp,
			cmdCheck,
			cmdVars,
			cmdAttr,
			cmdSetAttr,
			cmdRemove,
			cmdRepack,
			cmdInspect,
			cmdConfig,
			cmdSnapshot,
		},
	}
}

func main() {
	os.Exit(subcommands.Run(application(), nil))
}
