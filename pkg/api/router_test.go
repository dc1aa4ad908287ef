package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/core/events"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/logx"
	"github.com/LENAX/plan-engine/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, mutate ...func(cfg *config.EngineConfig)) (*engine.Engine, http.Handler) {
	t.Helper()
	cfg := config.Default()
	cfg.PlanEngine.Storage.Database.DSN = filepath.Join(t.TempDir(), "api.db")
	for _, m := range mutate {
		m(cfg)
	}

	eng, err := engine.NewEngineBuilder("").WithConfig(cfg).WithLogger(logx.Nop()).Build()
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))
	t.Cleanup(eng.Stop)

	server := NewAPIServer(eng, ServerConfigFrom(cfg), "test")
	return eng, server.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) dto.APIResponse[T] {
	t.Helper()
	var resp dto.APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHealthRoutes(t *testing.T) {
	_, h := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[dto.HealthResponse](t, w)
	assert.Equal(t, 0, health.Code)
	assert.Equal(t, "healthy", health.Data.Status)
	assert.Equal(t, "test", health.Data.Version)

	w = doJSON(t, h, http.MethodGet, "/api/v1/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode[map[string]string](t, w).Data["status"])
}

func TestScheduleRoutes(t *testing.T) {
	_, h := newTestRouter(t)

	t.Run("排期预览", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/v1/schedule/preview", `{
			"start_date": "2024-01-01",
			"tasks": [
				{"id": 1, "title": "A", "duration_days": 2, "dependencies": ""},
				{"id": "2", "title": "B", "duration_days": 3, "dependencies": "1"},
				{"id": 3, "title": "C", "duration_days": 0, "dependencies": [1]}
			]
		}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[dto.SchedulePreviewResponse](t, w)

		require.Len(t, resp.Data.Tasks, 3)
		byID := map[schedule.TaskID]schedule.ScheduledTask{}
		for _, task := range resp.Data.Tasks {
			byID[task.ID] = task
		}
		assert.Equal(t, "2024-01-03", byID["2"].Start.String())
		assert.Equal(t, "2024-01-06", byID["2"].End.String())
		assert.Equal(t, "2024-01-04", byID["3"].End.String())
		assert.Equal(t, 6, resp.Data.Duration.TotalDays)
	})

	t.Run("空任务列表", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/v1/schedule/preview", `{"start_date": "2024-01-01", "tasks": []}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.SchedulePreviewResponse](t, w)
		assert.Empty(t, resp.Data.Tasks)
		assert.Equal(t, 0, resp.Data.Duration.TotalDays)
		assert.Nil(t, resp.Data.Duration.StartDate)
	})

	t.Run("日期格式错误", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/v1/schedule/preview", `{"start_date": "01/02/2024", "tasks": []}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, http.StatusBadRequest, decode[any](t, w).Code)
	})

	t.Run("保留日期被拒绝", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/v1/schedule/preview", `{"start_date": "0001-01-01", "tasks": [{"id": 1}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("工期字段别名", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/v1/schedule/preview",
			`{"start_date": "2024-01-01", "tasks": [{"id": 1, "duration": 4}]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[dto.SchedulePreviewResponse](t, w)
		require.Len(t, resp.Data.Tasks, 1)
		assert.Equal(t, "2024-01-05", resp.Data.Tasks[0].End.String())
		assert.Equal(t, 5, resp.Data.Duration.TotalDays)
	})

	t.Run("依赖诊断", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/v1/schedule/validate", `{
			"tasks": [
				{"id": "1", "dependencies": "2"},
				{"id": "2", "dependencies": "9"}
			]
		}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.ScheduleValidateResponse](t, w)
		assert.False(t, resp.Data.Clean)
		assert.NotEmpty(t, resp.Data.Issues)
		assert.Len(t, resp.Data.Report.ForwardRefs, 1)
		assert.Len(t, resp.Data.Report.UnknownRefs, 1)
	})

	t.Run("技术栈推荐", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/v1/tech-stack", map[string]string{"description": "A mobile app for runners"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Mobile application", decode[planner.TechRecommendation](t, w).Data.ProjectType)

		w = doJSON(t, h, http.MethodPost, "/api/v1/tech-stack", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProjectRoutes(t *testing.T) {
	_, h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/projects", `{"description": "missing name"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/projects", map[string]string{"name": "Alpha", "start_date": "2024-02-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[storage.Project](t, w).Data
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "2024-02-01", created.StartDate.String())
	assert.Equal(t, storage.ProjectStatusActive, created.Status)

	w = doJSON(t, h, http.MethodPost, "/api/v1/projects", map[string]string{"name": "Beta"})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("列表分页", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/v1/projects?limit=1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[dto.ListResponse[storage.Project]](t, w).Data
		assert.Equal(t, 2, list.Total)
		assert.Len(t, list.Items, 1)
		assert.True(t, list.HasMore)

		w = doJSON(t, h, http.MethodGet, "/api/v1/projects?limit=500", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("更新", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPut, "/api/v1/projects/"+created.ID, map[string]string{"description": "updated", "status": "completed"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[storage.Project](t, w).Data
		assert.Equal(t, "Alpha", updated.Name)
		assert.Equal(t, "updated", updated.Description)
		assert.Equal(t, storage.ProjectStatusCompleted, updated.Status)

		w = doJSON(t, h, http.MethodPut, "/api/v1/projects/"+created.ID, map[string]string{"status": "paused"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, h, http.MethodPut, "/api/v1/projects/"+created.ID, map[string]string{"name": " "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("详情", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/v1/projects/"+created.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[map[string]interface{}](t, w).Data
		assert.Equal(t, created.ID, detail["id"])
		assert.Equal(t, []interface{}{}, detail["tasks"])
		assert.Equal(t, []interface{}{}, detail["user_stories"])
	})

	t.Run("没有任务时生成甘特图", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/v1/projects/"+created.ID+"/generate-gantt", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("删除", func(t *testing.T) {
		w := doJSON(t, h, http.MethodDelete, "/api/v1/projects/"+created.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, h, http.MethodGet, "/api/v1/projects/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, http.StatusNotFound, decode[any](t, w).Code)

		w = doJSON(t, h, http.MethodDelete, "/api/v1/projects/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("不存在的资源", func(t *testing.T) {
		for _, path := range []string{
			"/api/v1/projects/missing/tasks",
			"/api/v1/projects/missing/user-stories",
			"/api/v1/projects/missing/duration",
			"/api/v1/tasks/missing",
			"/api/v1/user-stories/missing",
		} {
			w := doJSON(t, h, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusNotFound, w.Code, path)
		}
	})
}

func TestPhasedGenerationRoutes(t *testing.T) {
	_, h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/projects/generate-tasks", map[string]string{
		"name":        "Tool",
		"description": "Internal tool",
		"start_date":  "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	phase1 := decode[dto.GenerateTasksResponse](t, w).Data
	require.Len(t, phase1.Tasks, 9)
	projectID := phase1.Project.ID

	w = doJSON(t, h, http.MethodPost, "/api/v1/projects/"+projectID+"/generate-gantt", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	phase2 := decode[dto.GanttResponse](t, w).Data
	assert.Equal(t, 12, phase2.Duration.TotalDays)
	assert.True(t, strings.HasPrefix(phase2.GanttCode, "gantt\n"))

	w = doJSON(t, h, http.MethodGet, "/api/v1/projects/"+projectID+"/duration", nil)
	require.Equal(t, http.StatusOK, w.Code)
	duration := decode[schedule.DurationSummary](t, w).Data
	assert.Equal(t, 12, duration.TotalDays)
	require.NotNil(t, duration.StartDate)
	assert.Equal(t, "2024-01-01", duration.StartDate.String())

	w = doJSON(t, h, http.MethodPost, "/api/v1/projects/"+projectID+"/generate-backlog", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	phase3 := decode[dto.BacklogResponse](t, w).Data
	require.NotEmpty(t, phase3.UserStories)

	t.Run("任务状态", func(t *testing.T) {
		taskID := phase1.Tasks[0].ID

		w := doJSON(t, h, http.MethodPatch, "/api/v1/tasks/"+taskID+"/status", map[string]string{"status": "blocked"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, h, http.MethodPatch, "/api/v1/tasks/"+taskID+"/status", map[string]string{"status": "done"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "done", decode[storage.Task](t, w).Data.Status)

		w = doJSON(t, h, http.MethodGet, "/api/v1/tasks/"+taskID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		task := decode[storage.Task](t, w).Data
		assert.Equal(t, "done", task.Status)
		assert.Equal(t, "2024-01-01", task.StartDate.String())
	})

	t.Run("用户故事", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/v1/projects/"+projectID+"/user-stories", nil)
		require.Equal(t, http.StatusOK, w.Code)
		stories := decode[[]storage.UserStory](t, w).Data
		require.Len(t, stories, len(phase3.UserStories))

		w = doJSON(t, h, http.MethodGet, "/api/v1/user-stories/"+stories[0].ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, projectID, decode[storage.UserStory](t, w).Data.ProjectID)
	})
}

func TestGenerateRoute(t *testing.T) {
	_, h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/projects/generate", map[string]string{
		"name":        "Shop",
		"description": "An e-commerce website with user login and an admin area",
		"start_date":  "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[dto.GenerateResponse](t, w).Data
	assert.Len(t, resp.Tasks, 18)
	assert.Len(t, resp.UserStories, 11)
	assert.Equal(t, 79, resp.Metrics.AgileMetrics.TotalPoints)
	assert.Equal(t, "E-commerce", resp.TechStack.ProjectType)
	assert.NotEmpty(t, resp.AgentsUsed)

	w = doJSON(t, h, http.MethodPost, "/api/v1/projects/generate", `{"description": "no name"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateRateLimit(t *testing.T) {
	_, h := newTestRouter(t, func(cfg *config.EngineConfig) {
		cfg.PlanEngine.Planning.GenerateRatePerSec = 0.001
		cfg.PlanEngine.Planning.GenerateBurst = 1
	})

	body := map[string]string{"name": "Tool", "description": "Internal tool"}
	w := doJSON(t, h, http.MethodPost, "/api/v1/projects/generate-tasks", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/projects/generate", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, http.StatusTooManyRequests, decode[any](t, w).Code)

	// 非生成接口不受影响
	w = doJSON(t, h, http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventStream(t *testing.T) {
	eng, h := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// 服务端在升级之后才订阅，持续发布直到收到第一条事件
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_, _ = eng.CreateProject(context.Background(), engine.ProjectInput{Name: "ws"})
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event events.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, events.EventProjectCreated, event.Type)
	assert.NotEmpty(t, event.ProjectID)
}

func TestAPIServerLifecycle(t *testing.T) {
	assert.Equal(t, DefaultServerConfig(), ServerConfigFrom(nil))

	eng, _ := newTestRouter(t)
	srvCfg := DefaultServerConfig()
	srvCfg.Host, srvCfg.Port = "127.0.0.1", 0
	server := NewAPIServer(eng, srvCfg, "test")

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	require.Eventually(t, func() bool {
		return !strings.HasSuffix(server.Addr(), ":0")
	}, 3*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}
