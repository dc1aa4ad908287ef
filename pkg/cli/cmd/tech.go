package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/LENAX/plan-engine/pkg/cli/output"
	"github.com/LENAX/plan-engine/pkg/cli/planclient"
	"github.com/LENAX/plan-engine/pkg/core/planner"
)

var techOffline bool

// techCmd tech子命令
var techCmd = &cobra.Command{
	Use:   "tech",
	Short: "技术栈推荐命令",
}

// techRecommendCmd 技术栈推荐
var techRecommendCmd = &cobra.Command{
	Use:   "recommend <description>",
	Short: "根据项目描述推荐技术栈",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.Join(args, " ")

		var rec planner.TechRecommendation
		if techOffline {
			rec = planner.NewTechAdvisor().Recommend(description)
		} else {
			result, err := planclient.New(serverURL).RecommendTech(cmd.Context(), description)
			if err != nil {
				output.Error("推荐失败: %v", err)
				return err
			}
			rec = *result
		}

		if outputJSON {
			return output.PrintJSON(rec)
		}

		output.Printf("项目类型: %s\n\n", rec.ProjectType)
		r := rec.Recommendations
		table := output.NewTable([]string{"CATEGORY", "NAME", "PRIORITY", "REASON"})
		for _, group := range [][]planner.Technology{r.Frontend, r.Backend, r.Database, r.DevOps, r.Tools} {
			for _, tech := range group {
				table.AddRow([]string{tech.Category, tech.Name, tech.Priority, tech.Reason})
			}
		}
		table.Render()
		output.Printf("\n%s\n", rec.Summary)
		return nil
	},
}

func init() {
	techRecommendCmd.Flags().BoolVar(&techOffline, "offline", false, "在本地计算，不访问服务端")
	techCmd.AddCommand(techRecommendCmd)
}
