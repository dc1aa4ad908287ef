package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPaths 未指定配置文件时依次查找的路径
var DefaultConfigPaths = []string{
	"./configs/plan-engine.yaml",
	"./plan-engine.yaml",
	"/etc/plan-engine/plan-engine.yaml",
}

// FindConfigFile 返回第一个存在的默认配置文件，都不存在时返回空字符串
func FindConfigFile() string {
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFrameworkConfig 加载并校验框架配置
// 文件中的 ${VAR} 会在解析前替换为环境变量；path为空或文件不存在时使用默认配置。
func LoadFrameworkConfig(path string) (*EngineConfig, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	return ParseFrameworkConfig(data)
}

// ParseFrameworkConfig 解析YAML内容
func ParseFrameworkConfig(data []byte) (*EngineConfig, error) {
	cfg := &EngineConfig{}
	// 缓存默认开启，除非显式关闭
	cfg.PlanEngine.Storage.Cache.Enabled = true

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg.ApplyDefaults()
	if err := ValidateFrameworkConfig(cfg); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}
