package dag

import (
	"fmt"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// Reference 一条依赖引用
type Reference struct {
	TaskID    schedule.TaskID `json:"task_id"`
	DependsOn schedule.TaskID `json:"depends_on"`
}

// Report 依赖诊断报告
// 除Levels外的每一项都对应排期时会被静默忽略或产生歧义的依赖。
type Report struct {
	ForwardRefs  []Reference         `json:"forward_refs"`
	UnknownRefs  []Reference         `json:"unknown_refs"`
	SelfRefs     []schedule.TaskID   `json:"self_refs"`
	DuplicateIDs []schedule.TaskID   `json:"duplicate_ids"`
	Cycle        []schedule.TaskID   `json:"cycle"`
	Levels       [][]schedule.TaskID `json:"levels,omitempty"`
}

// Clean 是否所有依赖都会在单遍排期中生效
func (r Report) Clean() bool {
	return len(r.ForwardRefs) == 0 &&
		len(r.UnknownRefs) == 0 &&
		len(r.SelfRefs) == 0 &&
		len(r.DuplicateIDs) == 0 &&
		len(r.Cycle) == 0
}

// Issues 将报告转为可读的问题描述列表
func (r Report) Issues() []string {
	issues := make([]string, 0)
	for _, ref := range r.ForwardRefs {
		issues = append(issues, fmt.Sprintf("task %s depends on %s, which appears later and is ignored", ref.TaskID, ref.DependsOn))
	}
	for _, ref := range r.UnknownRefs {
		issues = append(issues, fmt.Sprintf("task %s depends on unknown task %s", ref.TaskID, ref.DependsOn))
	}
	for _, id := range r.SelfRefs {
		issues = append(issues, fmt.Sprintf("task %s depends on itself", id))
	}
	for _, id := range r.DuplicateIDs {
		issues = append(issues, fmt.Sprintf("task id %s is used more than once", id))
	}
	if len(r.Cycle) > 0 {
		issues = append(issues, fmt.Sprintf("dependency cycle: %v", r.Cycle))
	}
	return issues
}

// Analyze 诊断任务列表中的依赖问题
// 按输入顺序模拟单遍排期：只有指向已出现任务的依赖才算已解析。
// 没有循环时附带参考拓扑分层。
func Analyze(tasks []schedule.TaskDescriptor) Report {
	report := Report{
		ForwardRefs:  make([]Reference, 0),
		UnknownRefs:  make([]Reference, 0),
		SelfRefs:     make([]schedule.TaskID, 0),
		DuplicateIDs: make([]schedule.TaskID, 0),
		Cycle:        make([]schedule.TaskID, 0),
	}

	all := make(map[schedule.TaskID]bool, len(tasks))
	for _, t := range tasks {
		all[t.ID] = true
	}

	processed := make(map[schedule.TaskID]bool, len(tasks))
	duplicated := make(map[schedule.TaskID]bool)
	selfRef := make(map[schedule.TaskID]bool)
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			switch {
			case dep == t.ID:
				if !selfRef[t.ID] {
					selfRef[t.ID] = true
					report.SelfRefs = append(report.SelfRefs, t.ID)
				}
			case processed[dep]:
			case all[dep]:
				report.ForwardRefs = append(report.ForwardRefs, Reference{TaskID: t.ID, DependsOn: dep})
			default:
				report.UnknownRefs = append(report.UnknownRefs, Reference{TaskID: t.ID, DependsOn: dep})
			}
		}
		if processed[t.ID] && !duplicated[t.ID] {
			duplicated[t.ID] = true
			report.DuplicateIDs = append(report.DuplicateIDs, t.ID)
		}
		processed[t.ID] = true
	}

	g, err := Build(tasks)
	if err != nil {
		ids, _, edges := collect(tasks)
		for _, id := range detectCycleDFS(ids, edges.adjacency()) {
			report.Cycle = append(report.Cycle, schedule.TaskID(id))
		}
		return report
	}

	if levels, err := g.Levels(); err == nil {
		report.Levels = levels
	}
	return report
}
