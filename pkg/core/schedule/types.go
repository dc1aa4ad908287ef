package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDuration 缺省或非正数工期时使用的天数
const DefaultDuration = 1

// TaskID 任务标识，在线路上可以是字符串或整数，内部统一为字符串
type TaskID string

// UnmarshalJSON 接受JSON字符串、整数或null
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id must be a string or a number: %w", err)
	}
	*id = TaskID(n.String())
	return nil
}

// UnmarshalText 实现encoding.TextUnmarshaler（YAML中的整数和字符串标量）
func (id *TaskID) UnmarshalText(text []byte) error {
	*id = TaskID(text)
	return nil
}

// DependencyList 有序的依赖任务ID列表
// 线路上可以是逗号分隔字符串（"1,2"）或数组（["1", 2]）。
type DependencyList []TaskID

// ParseDependencies 解析逗号分隔的依赖字符串，忽略空白项
func ParseDependencies(raw string) DependencyList {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	deps := make(DependencyList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		deps = append(deps, TaskID(p))
	}
	return deps
}

// String 返回逗号分隔形式（持久化格式）
func (l DependencyList) String() string {
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// UnmarshalJSON 接受逗号分隔字符串、数组或null
func (l *DependencyList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = ParseDependencies(s)
		return nil
	}
	var ids []TaskID
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("dependencies must be a comma-separated string or a list: %w", err)
	}
	deps := make(DependencyList, 0, len(ids))
	for _, id := range ids {
		trimmed := TaskID(strings.TrimSpace(string(id)))
		if trimmed == "" {
			continue
		}
		deps = append(deps, trimmed)
	}
	*l = deps
	return nil
}

// UnmarshalText YAML标量形式（"1,2" 或 1）
func (l *DependencyList) UnmarshalText(text []byte) error {
	*l = ParseDependencies(string(text))
	return nil
}

// TaskDescriptor 待排期的任务描述
// 解码时工期字段名为 duration_days，同时接受 duration 作为别名（两者都给出时以 duration_days 为准）。
type TaskDescriptor struct {
	ID           TaskID         `json:"id" yaml:"id"`
	Title        string         `json:"title,omitempty" yaml:"title,omitempty"`
	Duration     int            `json:"duration_days" yaml:"duration_days"`
	Dependencies DependencyList `json:"dependencies" yaml:"dependencies"`
	Priority     string         `json:"priority,omitempty" yaml:"priority,omitempty"`
	Status       string         `json:"status,omitempty" yaml:"status,omitempty"`
}

// taskFields 解码用的别名类型，避免递归调用UnmarshalJSON/UnmarshalYAML
type taskFields TaskDescriptor

// UnmarshalJSON 解码任务描述，接受 duration 别名
func (t *TaskDescriptor) UnmarshalJSON(data []byte) error {
	aux := struct {
		*taskFields
		DurationAlias *int `json:"duration"`
	}{taskFields: (*taskFields)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.Duration == 0 && aux.DurationAlias != nil {
		t.Duration = *aux.DurationAlias
	}
	return nil
}

// UnmarshalYAML 解码任务描述，接受 duration 别名
func (t *TaskDescriptor) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		taskFields    `yaml:",inline"`
		DurationAlias *int `yaml:"duration"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*t = TaskDescriptor(aux.taskFields)
	if t.Duration == 0 && aux.DurationAlias != nil {
		t.Duration = *aux.DurationAlias
	}
	return nil
}

// EffectiveDuration 实际使用的工期，缺省或非正数时为1天
func (t TaskDescriptor) EffectiveDuration() int {
	if t.Duration <= 0 {
		return DefaultDuration
	}
	return t.Duration
}

// clone 复制描述，依赖列表不与输入共享底层数组
func (t TaskDescriptor) clone() TaskDescriptor {
	if t.Dependencies != nil {
		t.Dependencies = append(DependencyList(nil), t.Dependencies...)
	}
	return t
}

// ScheduledTask 已排期的任务：原始描述加上计算出的起止日期
// End为开区间：1天的任务占用[Start, Start+1)。
type ScheduledTask struct {
	TaskDescriptor `yaml:",inline"`
	Start          Date `json:"start_date" yaml:"start_date"`
	End            Date `json:"end_date" yaml:"end_date"`
}

// scheduledDates 排期结果中的日期字段
type scheduledDates struct {
	Start Date `json:"start_date" yaml:"start_date"`
	End   Date `json:"end_date" yaml:"end_date"`
}

// UnmarshalJSON 分别解码任务描述和起止日期（嵌入的TaskDescriptor自带解码方法）
func (s *ScheduledTask) UnmarshalJSON(data []byte) error {
	if err := s.TaskDescriptor.UnmarshalJSON(data); err != nil {
		return err
	}
	var dates scheduledDates
	if err := json.Unmarshal(data, &dates); err != nil {
		return err
	}
	s.Start, s.End = dates.Start, dates.End
	return nil
}

// UnmarshalYAML 分别解码任务描述和起止日期
func (s *ScheduledTask) UnmarshalYAML(value *yaml.Node) error {
	if err := s.TaskDescriptor.UnmarshalYAML(value); err != nil {
		return err
	}
	var dates scheduledDates
	if err := value.Decode(&dates); err != nil {
		return err
	}
	s.Start, s.End = dates.Start, dates.End
	return nil
}

// DurationSummary 项目工期汇总，StartDate/EndDate为nil表示缺失
type DurationSummary struct {
	TotalDays int   `json:"total_days" yaml:"total_days"`
	StartDate *Date `json:"start_date" yaml:"start_date"`
	EndDate   *Date `json:"end_date" yaml:"end_date"`
}

// 任务状态
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// ValidStatus 是否为合法的任务状态
func ValidStatus(status string) bool {
	switch status {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}
