package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// taskFile 任务文件：带开始日期的对象，或者直接是任务数组
//
//	name: Shop
//	start_date: 2024-01-01
//	tasks:
//	  - {id: 1, title: Design, duration_days: 3}
//	  - {id: 2, title: Build, duration_days: 5, dependencies: "1"}
type taskFile struct {
	Name      string                    `json:"name" yaml:"name"`
	StartDate schedule.Date             `json:"start_date" yaml:"start_date"`
	Tasks     []schedule.TaskDescriptor `json:"tasks" yaml:"tasks"`
}

// loadTaskFile 读取YAML或JSON任务文件（以 { 或 [ 开头时按JSON解析）
func loadTaskFile(path string) (*taskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取任务文件失败: %w", err)
	}
	return parseTaskFile(data)
}

func parseTaskFile(data []byte) (*taskFile, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &taskFile{}, nil
	}

	var tf taskFile
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &tf.Tasks); err != nil {
			return nil, fmt.Errorf("解析任务文件失败: %w", err)
		}
	case '{':
		if err := json.Unmarshal(trimmed, &tf); err != nil {
			return nil, fmt.Errorf("解析任务文件失败: %w", err)
		}
	default:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("解析任务文件失败: %w", err)
		}
		if len(root.Content) == 0 {
			return &tf, nil
		}
		doc := root.Content[0]
		var target interface{} = &tf
		if doc.Kind == yaml.SequenceNode {
			target = &tf.Tasks
		}
		if err := doc.Decode(target); err != nil {
			return nil, fmt.Errorf("解析任务文件失败: %w", err)
		}
	}
	return &tf, nil
}
