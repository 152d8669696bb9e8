package cmd

import (
	"fmt"

	"github.com/haierkeys/campus-share-service/internal/app"

	"github.com/spf13/cobra"
)

func versionLine() string {
	return fmt.Sprintf("%s %s (git %s, built %s)", app.Name, app.Version, app.GitTag, app.BuildTime)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information // 打印构建信息",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionLine())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
