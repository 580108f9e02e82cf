package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:          "worldsheet",
		Short:        "Linked worldbuilding worksheets and archetype implications",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "worldsheet.yaml", "Project config file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log at debug level")
	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(linksCmd())
	root.AddCommand(linkCmd())
	root.AddCommand(implicationsCmd())
	root.AddCommand(worksheetCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
