package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"
)

type buildInfo struct {
	version string
	commit  string
	date    string
}

// versionInfo is set by SetVersionInfo from the ldflags in main.
var versionInfo = buildInfo{version: "dev", commit: "none", date: "unknown"}

var (
	versionShort  bool
	versionOutput string
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Example: `
tt version
tt version --short
tt version -o yaml`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		resp := goversion.FuncWithOutput(versionShort, versionInfo.version, versionInfo.commit, versionInfo.date, versionOutput)
		_, _ = fmt.Fprint(deps.Stdout, resp)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "Print just the version number.")
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "json", "Output format. One of 'yaml' or 'json'.")
}
