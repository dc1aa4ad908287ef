package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LENAX/plan-engine/pkg/cli/output"
	"github.com/LENAX/plan-engine/pkg/core/dag"
	"github.com/LENAX/plan-engine/pkg/core/gantt"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

var (
	scheduleFile   string
	scheduleStart  string
	scheduleGantt  bool
	scheduleStrict bool
)

// scheduleCmd schedule子命令（离线，不需要服务端）
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "离线排期命令",
	Long:  `读取YAML/JSON任务文件，在本地计算排期或检查依赖关系，不访问服务端。`,
}

// schedulePreviewCmd 排期预览
var schedulePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "计算任务文件的排期",
	Long: `按任务在文件中的顺序单遍计算排期：依赖只有指向前面已出现的任务时才生效。

示例：
  plan-engine schedule preview -f tasks.yaml --start 2024-01-01
  plan-engine schedule preview -f tasks.json --gantt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := loadTaskFile(scheduleFile)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		start := tf.StartDate
		if scheduleStart != "" {
			if start, err = schedule.ParseDate(scheduleStart); err != nil {
				output.Error("开始日期无效: %v", err)
				return err
			}
		}
		if start.IsZero() {
			start = schedule.Today()
		}

		tasks := schedule.CreateSchedule(tf.Tasks, start)
		summary := schedule.CalculateProjectDuration(tasks)

		if outputJSON {
			return output.PrintJSON(map[string]interface{}{
				"tasks":    tasks,
				"duration": summary,
			})
		}

		if scheduleGantt {
			name := tf.Name
			if name == "" {
				name = "Project"
			}
			output.Printf("%s", gantt.Mermaid(name, tasks))
			return nil
		}

		if len(tasks) == 0 {
			output.Info("任务文件中没有任务")
			return nil
		}

		table := output.NewTable([]string{"ID", "TITLE", "DAYS", "START", "END", "DEPS"})
		for _, t := range tasks {
			table.AddRow([]string{
				string(t.ID),
				t.Title,
				strconv.Itoa(t.EffectiveDuration()),
				t.Start.String(),
				t.End.String(),
				depsOrDash(t.Dependencies),
			})
		}
		table.Render()
		output.Printf("\n总工期: %d 天 (%s → %s)\n", summary.TotalDays, summary.StartDate, summary.EndDate)
		return nil
	},
}

// scheduleCheckCmd 依赖检查
var scheduleCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "检查任务文件中的依赖问题",
	Long: `报告会被单遍排期忽略的依赖（前向引用、未知任务、自引用）、重复ID和依赖环。
使用 --strict 时存在问题则以非零状态退出。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := loadTaskFile(scheduleFile)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		report := dag.Analyze(tf.Tasks)
		if outputJSON {
			if err := output.PrintJSON(report); err != nil {
				return err
			}
		} else if report.Clean() {
			output.Success("依赖检查通过: %d 个任务", len(tf.Tasks))
			if len(report.Levels) > 0 {
				output.Printf("可并行分层: %d 层\n", len(report.Levels))
			}
		} else {
			for _, issue := range report.Issues() {
				output.Warning("%s", issue)
			}
		}

		if scheduleStrict && !report.Clean() {
			return fmt.Errorf("dependency check found %d issue(s)", len(report.Issues()))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{schedulePreviewCmd, scheduleCheckCmd} {
		c.Flags().StringVarP(&scheduleFile, "file", "f", "", "任务文件路径（YAML或JSON）")
		_ = c.MarkFlagRequired("file")
	}
	schedulePreviewCmd.Flags().StringVar(&scheduleStart, "start", "", "开始日期 YYYY-MM-DD（默认取文件中的start_date或当天）")
	schedulePreviewCmd.Flags().BoolVar(&scheduleGantt, "gantt", false, "输出Mermaid甘特图")
	scheduleCheckCmd.Flags().BoolVar(&scheduleStrict, "strict", false, "存在问题时返回错误")

	scheduleCmd.AddCommand(schedulePreviewCmd)
	scheduleCmd.AddCommand(scheduleCheckCmd)
}
