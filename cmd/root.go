package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDefault holds the embedded default config.yaml
// configDefault 保存内嵌的默认 config.yaml
var configDefault string

var rootCmd = &cobra.Command{
	Use:           "campus-share-service",
	Short:         "Ride sharing and group food orders for students",
	Long:          "Campus Share Service pools taxi rides and food deliveries between students and splits the cost.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command with the embedded default config
// Execute 使用内嵌默认配置执行根命令
func Execute(defaultConfig string) {
	configDefault = defaultConfig
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
