// Package events 项目生命周期事件总线（基于 watermill gochannel）
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType 事件类型
type EventType string

const (
	EventProjectCreated    EventType = "project.created"     // 项目创建
	EventProjectUpdated    EventType = "project.updated"     // 项目更新
	EventProjectDeleted    EventType = "project.deleted"     // 项目删除
	EventTasksGenerated    EventType = "tasks.generated"     // 任务生成
	EventScheduleGenerated EventType = "schedule.generated"  // 排期完成
	EventBacklogGenerated  EventType = "backlog.generated"   // 待办生成
	EventTaskStatusChanged EventType = "task.status_changed" // 任务状态变更
)

// Event 事件基础结构
type Event struct {
	ID        string          `json:"id"`         // 事件ID（UUID）
	Type      EventType       `json:"type"`       // 事件类型
	ProjectID string          `json:"project_id"` // 关联项目ID
	Timestamp time.Time       `json:"timestamp"`  // 事件时间
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEvent 创建事件，payload序列化失败时事件不带负载
func NewEvent(eventType EventType, projectID string, payload interface{}) *Event {
	e := &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ProjectID: projectID,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			e.Payload = data
		}
	}
	return e
}

// DecodePayload 解析负载
func (e *Event) DecodePayload(v interface{}) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

// TasksGeneratedPayload 任务生成事件负载
type TasksGeneratedPayload struct {
	Count int `json:"count"`
}

// ScheduleGeneratedPayload 排期事件负载
type ScheduleGeneratedPayload struct {
	Tasks     int    `json:"tasks"`
	TotalDays int    `json:"total_days"`
	Trigger   string `json:"trigger"` // api / cron
}

// BacklogGeneratedPayload 待办生成事件负载
type BacklogGeneratedPayload struct {
	Stories     int `json:"stories"`
	TotalPoints int `json:"total_points"`
}

// TaskStatusChangedPayload 任务状态变更负载
type TaskStatusChangedPayload struct {
	TaskID string `json:"task_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}
