package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/cli/output"
	"github.com/LENAX/plan-engine/pkg/cli/planclient"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/storage"
)

var (
	projectLimit       int
	projectOffset      int
	projectName        string
	projectDescription string
	projectStart       string
)

// projectCmd project子命令
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "项目管理命令",
	Long:  `管理服务端存储的项目，包括列出、查看、生成和删除。`,
}

// projectListCmd 列出项目
var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出项目",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := planclient.New(serverURL)
		result, err := client.ListProjects(cmd.Context(), projectLimit, projectOffset)
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}

		if len(result.Items) == 0 {
			output.Info("暂无项目")
			return nil
		}

		table := output.NewTable([]string{"PROJECT_ID", "NAME", "STATUS", "START", "CREATED"})
		for _, p := range result.Items {
			table.AddRow([]string{
				p.ID,
				p.Name,
				formatProjectStatus(p.Status),
				dateOrDash(p.StartDate),
				p.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
		output.Printf("\n总计: %d 个项目\n", result.Total)
		return nil
	},
}

// projectGetCmd 查看项目
var projectGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "查看项目详情（任务和排期）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := planclient.New(serverURL)
		detail, err := client.GetProject(cmd.Context(), args[0])
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(detail)
		}

		output.Printf("Project:  %s\n", detail.ID)
		output.Printf("Name:     %s\n", detail.Name)
		output.Printf("Status:   %s\n", formatProjectStatus(detail.Status))
		output.Printf("Start:    %s\n", dateOrDash(detail.StartDate))
		if detail.Duration.TotalDays > 0 {
			output.Printf("Duration: %d days (%s → %s)\n",
				detail.Duration.TotalDays, detail.Duration.StartDate, detail.Duration.EndDate)
		}
		if detail.Description != "" {
			output.Printf("\n%s\n", detail.Description)
		}

		output.Printf("\nTasks:\n")
		renderTasks(detail.Tasks)
		output.Printf("\nUser stories: %d\n", len(detail.UserStories))
		return nil
	},
}

// projectGenerateCmd 生成项目计划
var projectGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "根据描述生成项目计划（任务、排期和用户故事）",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := schedule.ParseDate(projectStart)
		if err != nil {
			output.Error("开始日期无效: %v", err)
			return err
		}

		client := planclient.New(serverURL)
		result, err := client.GenerateProject(cmd.Context(), dto.CreateProjectRequest{
			Name:        projectName,
			Description: projectDescription,
			StartDate:   start,
		})
		if err != nil {
			output.Error("生成失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}

		output.Success("项目已生成: %s (%s)", result.Project.Name, result.Project.ID)
		renderTasks(result.Tasks)
		output.Printf("\n工期: %d 天，用户故事: %d 个，故事点: %d，预计迭代: %d\n",
			result.Metrics.ProjectDuration.TotalDays,
			len(result.UserStories),
			result.Metrics.AgileMetrics.TotalPoints,
			result.Metrics.AgileMetrics.SprintsNeeded)
		output.Printf("技术栈: %s\n", result.TechStack.Summary)
		return nil
	},
}

// projectGanttCmd 重新排期并输出甘特图
var projectGanttCmd = &cobra.Command{
	Use:   "gantt <id>",
	Short: "重新排期并输出Mermaid甘特图",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := planclient.New(serverURL)
		result, err := client.GenerateGantt(cmd.Context(), args[0])
		if err != nil {
			output.Error("排期失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}
		output.Printf("%s", result.GanttCode)
		return nil
	},
}

// projectDeleteCmd 删除项目
var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "删除项目及其任务和用户故事",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := planclient.New(serverURL)
		if err := client.DeleteProject(cmd.Context(), args[0]); err != nil {
			output.Error("删除失败: %v", err)
			return err
		}
		output.Success("项目已删除: %s", args[0])
		return nil
	},
}

func init() {
	// 添加flags
	projectListCmd.Flags().IntVar(&projectLimit, "limit", 20, "返回记录数量限制")
	projectListCmd.Flags().IntVar(&projectOffset, "offset", 0, "跳过的记录数")

	projectGenerateCmd.Flags().StringVarP(&projectName, "name", "n", "", "项目名称")
	projectGenerateCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "项目描述")
	projectGenerateCmd.Flags().StringVar(&projectStart, "start", "", "开始日期 YYYY-MM-DD（默认当天）")
	_ = projectGenerateCmd.MarkFlagRequired("name")

	// 添加子命令
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectGetCmd)
	projectCmd.AddCommand(projectGenerateCmd)
	projectCmd.AddCommand(projectGanttCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

// renderTasks 以表格输出任务
func renderTasks(tasks []storage.Task) {
	if len(tasks) == 0 {
		output.Info("暂无任务")
		return
	}
	table := output.NewTable([]string{"KEY", "TITLE", "DAYS", "START", "END", "DEPS", "STATUS"})
	for _, t := range tasks {
		table.AddRow([]string{
			t.Key,
			t.Title,
			strconv.Itoa(t.DurationDays),
			dateOrDash(t.StartDate),
			dateOrDash(t.EndDate),
			depsOrDash(t.Dependencies),
			formatTaskStatus(t.Status),
		})
	}
	table.Render()
}

// formatProjectStatus 格式化项目状态显示
func formatProjectStatus(status string) string {
	switch status {
	case storage.ProjectStatusActive:
		return "🔄 active"
	case storage.ProjectStatusCompleted:
		return "✅ completed"
	case storage.ProjectStatusArchived:
		return "📦 archived"
	default:
		return status
	}
}

// formatTaskStatus 格式化任务状态显示
func formatTaskStatus(status string) string {
	switch status {
	case schedule.StatusDone:
		return "✅ done"
	case schedule.StatusInProgress:
		return "🔄 in_progress"
	case schedule.StatusTodo:
		return "⏳ todo"
	default:
		return status
	}
}

func dateOrDash(d schedule.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

func depsOrDash(deps schedule.DependencyList) string {
	if len(deps) == 0 {
		return "-"
	}
	return deps.String()
}
