// Package gantt 将排期结果渲染为 Mermaid 甘特图文本。
package gantt

import (
	"fmt"
	"strings"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// DefaultTitle 任务没有标题时使用的名称
const DefaultTitle = "Task"

var labelReplacer = strings.NewReplacer(":", " -", "#", "", "\r", " ", "\n", " ", ";", ",")

// sanitize 去掉会破坏 Mermaid 语法的字符
func sanitize(s string) string {
	return strings.TrimSpace(labelReplacer.Replace(s))
}

// State 任务状态对应的 Mermaid 标记
func State(status string) string {
	switch status {
	case schedule.StatusDone:
		return "done"
	case schedule.StatusInProgress:
		return "active"
	default:
		return "crit"
	}
}

// Mermaid 生成甘特图代码，任务按传入顺序输出
func Mermaid(projectName string, tasks []schedule.ScheduledTask) string {
	lines := []string{
		"gantt",
		"    title " + sanitize(projectName),
		"    dateFormat YYYY-MM-DD",
		"",
	}

	for _, t := range tasks {
		title := sanitize(t.Title)
		if title == "" {
			title = DefaultTitle
		}
		lines = append(lines, fmt.Sprintf("    %s :%s, %s, %dd", title, State(t.Status), t.Start, t.EffectiveDuration()))
	}

	return strings.Join(lines, "\n")
}
