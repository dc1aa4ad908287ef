package cmd

import (
	"github.com/spf13/cobra"

	"github.com/LENAX/plan-engine/pkg/cli/output"
)

// 版本信息（编译时注入）
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// versionCmd version命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		if outputJSON {
			_ = output.PrintJSON(map[string]string{
				"version":    Version,
				"git_commit": GitCommit,
				"build_time": BuildTime,
			})
			return
		}
		output.Printf("Plan Engine CLI\n")
		output.Printf("  Version:    %s\n", Version)
		output.Printf("  Git Commit: %s\n", GitCommit)
		output.Printf("  Build Time: %s\n", BuildTime)
	},
}
