package planclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/api"
	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/logx"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.PlanEngine.Storage.Database.DSN = filepath.Join(t.TempDir(), "client.db")
	eng, err := engine.NewEngineBuilder("").WithConfig(cfg).WithLogger(logx.Nop()).Build()
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))
	t.Cleanup(eng.Stop)

	srv := httptest.NewServer(api.NewAPIServer(eng, api.ServerConfigFrom(cfg), "test").Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestClient_ProjectLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)

	generated, err := client.GenerateProject(ctx, dto.CreateProjectRequest{
		Name:        "Tool",
		Description: "Internal tool",
		StartDate:   schedule.MustParseDate("2024-01-01"),
	})
	require.NoError(t, err)
	assert.Len(t, generated.Tasks, 9)
	assert.Equal(t, 12, generated.Metrics.ProjectDuration.TotalDays)

	list, err := client.ListProjects(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, generated.Project.ID, list.Items[0].ID)

	detail, err := client.GetProject(ctx, generated.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tool", detail.Name)
	assert.Len(t, detail.Tasks, 9)
	assert.Equal(t, 12, detail.Duration.TotalDays)

	gantt, err := client.GenerateGantt(ctx, generated.Project.ID)
	require.NoError(t, err)
	assert.Contains(t, gantt.GanttCode, "dateFormat YYYY-MM-DD")

	require.NoError(t, client.DeleteProject(ctx, generated.Project.ID))

	_, err = client.GetProject(ctx, generated.Project.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClient_Errors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	t.Run("参数错误", func(t *testing.T) {
		_, err := client.RecommendTech(ctx, "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("技术栈推荐", func(t *testing.T) {
		rec, err := client.RecommendTech(ctx, "REST api for billing")
		require.NoError(t, err)
		assert.Equal(t, "Backend API", rec.ProjectType)
	})

	t.Run("服务不可达", func(t *testing.T) {
		_, err := New("http://127.0.0.1:1").Health(ctx)
		require.Error(t, err)
		assert.False(t, IsNotFound(err))
	})
}
