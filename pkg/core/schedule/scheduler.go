// Package schedule 根据任务工期和依赖关系计算项目排期。
//
// 排期是单遍、从左到右的：一个依赖只有在被依赖的任务出现在输入序列更前面时才会生效，
// 指向后面任务、不存在的任务或自身的依赖都会被静默忽略。这里不做拓扑排序，
// 需要检查这些情况时使用 dag.Analyze 单独诊断。
package schedule

import "sort"

// CreateSchedule 为任务列表计算开始/结束日期，结果按开始日期稳定排序
//
// 每个任务的开始日期 = max(项目开始日期, 已处理依赖任务的结束日期)，
// 结束日期 = 开始日期 + 工期天数。重复的任务ID以后出现者的结束日期为准。
// 空输入返回空切片；不修改输入。
func CreateSchedule(tasks []TaskDescriptor, start Date) []ScheduledTask {
	scheduled, _ := CreateScheduleIndexed(tasks, start)
	return scheduled
}

// CreateScheduleIndexed 与 CreateSchedule 相同，额外返回每个结果在输入中的下标
// 任务ID重复时，调用方用下标把结果对应回自己的记录。
func CreateScheduleIndexed(tasks []TaskDescriptor, start Date) ([]ScheduledTask, []int) {
	scheduled := make([]ScheduledTask, 0, len(tasks))
	positions := make([]int, 0, len(tasks))
	endDates := make(map[TaskID]Date, len(tasks))

	for i, t := range tasks {
		taskStart := start
		for _, dep := range t.Dependencies {
			if end, ok := endDates[dep]; ok && end.After(taskStart) {
				taskStart = end
			}
		}

		taskEnd := taskStart.AddDays(t.EffectiveDuration())
		endDates[t.ID] = taskEnd

		scheduled = append(scheduled, ScheduledTask{
			TaskDescriptor: t.clone(),
			Start:          taskStart,
			End:            taskEnd,
		})
		positions = append(positions, i)
	}

	sort.Stable(byStart{tasks: scheduled, positions: positions})
	return scheduled, positions
}

// byStart 按开始日期排序，同时移动输入下标
type byStart struct {
	tasks     []ScheduledTask
	positions []int
}

func (s byStart) Len() int           { return len(s.tasks) }
func (s byStart) Less(i, j int) bool { return s.tasks[i].Start.Before(s.tasks[j].Start) }
func (s byStart) Swap(i, j int) {
	s.tasks[i], s.tasks[j] = s.tasks[j], s.tasks[i]
	s.positions[i], s.positions[j] = s.positions[j], s.positions[i]
}

// CalculateProjectDuration 汇总已排期任务的最早开始、最晚结束和总天数（含首尾）
//
// 缺少开始或结束日期的任务不参与对应的最值计算；没有任何可用的开始或结束日期时返回零值汇总。
func CalculateProjectDuration(tasks []ScheduledTask) DurationSummary {
	var (
		minStart, maxEnd Date
		hasStart, hasEnd bool
	)

	for _, t := range tasks {
		if !t.Start.IsZero() && (!hasStart || t.Start.Before(minStart)) {
			minStart = t.Start
			hasStart = true
		}
		if !t.End.IsZero() && (!hasEnd || t.End.After(maxEnd)) {
			maxEnd = t.End
			hasEnd = true
		}
	}

	if !hasStart || !hasEnd {
		return DurationSummary{}
	}

	return DurationSummary{
		TotalDays: minStart.DaysUntil(maxEnd) + 1,
		StartDate: &minStart,
		EndDate:   &maxEnd,
	}
}

// Descriptors 取出排期结果中的原始描述（保持当前顺序）
func Descriptors(tasks []ScheduledTask) []TaskDescriptor {
	out := make([]TaskDescriptor, len(tasks))
	for i, t := range tasks {
		out[i] = t.TaskDescriptor.clone()
	}
	return out
}
