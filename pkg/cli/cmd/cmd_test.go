package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/api"
	"github.com/LENAX/plan-engine/pkg/cli/output"
	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/logx"
)

const yamlTasks = `name: Shop
start_date: 2024-01-01
tasks:
  - id: 1
    title: Design
    duration_days: 2
  - id: 2
    title: Build
    duration_days: 3
    dependencies: "1"
  - id: 3
    title: Docs
    duration_days: 1
    dependencies: [1]
`

// runCLI 重置全局参数后执行命令，返回输出
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	serverURL = "http://localhost:8080"
	outputJSON = false
	scheduleFile, scheduleStart = "", ""
	scheduleGantt, scheduleStrict = false, false
	projectLimit, projectOffset = 20, 0
	projectName, projectDescription, projectStart = "", "", ""
	techOffline = false

	var buf bytes.Buffer
	restore := output.SetOutput(&buf)
	defer restore()

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseTaskFile(t *testing.T) {
	cases := []struct {
		name  string
		input string
		start string
		deps  []string
	}{
		{"YAML对象", yamlTasks, "2024-01-01", []string{"", "1", "1"}},
		{"YAML数组", "- {id: a, duration_days: 2}\n- {id: b, dependencies: a}\n", "", []string{"", "a"}},
		{"JSON数组", `[{"id": 1}, {"id": 2, "dependencies": [1]}]`, "", []string{"", "1"}},
		{"JSON对象", `{"start_date": "2024-05-01", "tasks": [{"id": "x", "dependencies": ""}]}`, "2024-05-01", []string{""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tf, err := parseTaskFile([]byte(tc.input))
			require.NoError(t, err)
			require.Len(t, tf.Tasks, len(tc.deps))
			if tc.start == "" {
				assert.True(t, tf.StartDate.IsZero())
			} else {
				assert.Equal(t, tc.start, tf.StartDate.String())
			}
			for i, want := range tc.deps {
				assert.Equal(t, want, tf.Tasks[i].Dependencies.String())
			}
		})
	}

	t.Run("空文件", func(t *testing.T) {
		tf, err := parseTaskFile([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, tf.Tasks)
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := parseTaskFile([]byte(`{"tasks": [`))
		assert.Error(t, err)
	})
}

func TestSchedulePreviewCommand(t *testing.T) {
	path := writeFile(t, "tasks.yaml", yamlTasks)

	t.Run("JSON输出", func(t *testing.T) {
		out, err := runCLI(t, "schedule", "preview", "-f", path, "--json")
		require.NoError(t, err)

		var result struct {
			Tasks    []schedule.ScheduledTask `json:"tasks"`
			Duration schedule.DurationSummary `json:"duration"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &result), out)
		require.Len(t, result.Tasks, 3)
		assert.Equal(t, schedule.TaskID("1"), result.Tasks[0].ID)
		assert.Equal(t, "2024-01-03", result.Tasks[1].Start.String())
		assert.Equal(t, 6, result.Duration.TotalDays)
	})

	t.Run("覆盖开始日期", func(t *testing.T) {
		out, err := runCLI(t, "schedule", "preview", "-f", path, "--start", "2024-02-01")
		require.NoError(t, err)
		assert.Contains(t, out, "2024-02-01")
		assert.Contains(t, out, "总工期: 6 天")
	})

	t.Run("甘特图", func(t *testing.T) {
		out, err := runCLI(t, "schedule", "preview", "-f", path, "--gantt")
		require.NoError(t, err)
		assert.Contains(t, out, "gantt\n    title Shop\n")
		assert.Contains(t, out, "Build :crit, 2024-01-03, 3d")
	})

	t.Run("日期无效", func(t *testing.T) {
		_, err := runCLI(t, "schedule", "preview", "-f", path, "--start", "tomorrow")
		assert.Error(t, err)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := runCLI(t, "schedule", "preview", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestScheduleCheckCommand(t *testing.T) {
	clean := writeFile(t, "clean.yaml", yamlTasks)
	broken := writeFile(t, "broken.json", `[{"id": 1, "dependencies": "2"}, {"id": 2}, {"id": 3, "dependencies": "3"}]`)

	out, err := runCLI(t, "schedule", "check", "-f", clean)
	require.NoError(t, err)
	assert.Contains(t, out, "依赖检查通过: 3 个任务")
	assert.Contains(t, out, "可并行分层: 2 层")

	out, err = runCLI(t, "schedule", "check", "-f", broken)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = runCLI(t, "schedule", "check", "-f", broken, "--strict")
	assert.Error(t, err)
}

func TestVersionAndTechCommands(t *testing.T) {
	out, err := runCLI(t, "version", "--json")
	require.NoError(t, err)
	var version map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &version))
	assert.Equal(t, Version, version["version"])

	out, err = runCLI(t, "tech", "recommend", "--offline", "a", "mobile", "app")
	require.NoError(t, err)
	assert.Contains(t, out, "Mobile application")
}

func TestProjectCommands(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.PlanEngine.Storage.Database.DSN = filepath.Join(t.TempDir(), "cli.db")
	eng, err := engine.NewEngineBuilder("").WithConfig(cfg).WithLogger(logx.Nop()).Build()
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))
	defer eng.Stop()

	srv := httptest.NewServer(api.NewAPIServer(eng, api.ServerConfigFrom(cfg), "test").Handler())
	defer srv.Close()

	out, err := runCLI(t, "-s", srv.URL, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "暂无项目")

	out, err = runCLI(t, "-s", srv.URL, "project", "generate", "--json",
		"--name", "Tool", "--description", "Internal tool", "--start", "2024-01-01")
	require.NoError(t, err)
	var generated struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &generated), out)
	require.NotEmpty(t, generated.Project.ID)

	out, err = runCLI(t, "-s", srv.URL, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, generated.Project.ID)
	assert.Contains(t, out, "总计: 1 个项目")

	out, err = runCLI(t, "-s", srv.URL, "project", "get", generated.Project.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Duration: 12 days")

	out, err = runCLI(t, "-s", srv.URL, "project", "gantt", generated.Project.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "title Tool")

	_, err = runCLI(t, "-s", srv.URL, "project", "delete", generated.Project.ID)
	require.NoError(t, err)

	_, err = runCLI(t, "-s", srv.URL, "project", "get", generated.Project.ID)
	assert.Error(t, err)
}
