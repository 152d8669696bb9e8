package cmd

import (
	"context"
	"fmt"
	"os"

	internalApp "github.com/haierkeys/campus-share-service/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep [-c config_file] [--kind ride|food]",
	Short: "Mark due rides and food orders as expired once and exit. // 执行一次过期清扫后退出。",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		kind, _ := cmd.Flags().GetString("kind")

		if kind != "" && kind != "ride" && kind != "food" {
			fmt.Printf("Unknown kind %q, expected ride or food\n", kind)
			os.Exit(1)
		}

		appConfig, lg, db, err := loadRuntime(configPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		a, err := internalApp.NewApp(appConfig, lg, db)
		if err != nil {
			fmt.Printf("Failed to create app container: %v\n", err)
			os.Exit(1)
		}
		defer a.Shutdown(context.Background())

		failed := false
		for _, s := range a.Sweepers() {
			if kind != "" && s.Kind().String() != kind {
				continue
			}
			n, err := s.Sweep(context.Background())
			if err != nil {
				lg.Error("sweep failed", zap.String("kind", s.Kind().String()), zap.Error(err))
				fmt.Printf("%s: failed: %v\n", s.Kind(), err)
				failed = true
				continue
			}
			fmt.Printf("%s: %d expired\n", s.Kind(), n)
		}

		if failed {
			a.Shutdown(context.Background())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().StringP("config", "c", "", "config file path")
	sweepCmd.Flags().String("kind", "", "only sweep this kind: ride or food")
}
