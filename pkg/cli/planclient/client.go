// Package planclient 计划引擎HTTP API客户端，供命令行使用。
package planclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// APIError 服务端返回的错误响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsNotFound 是否为404错误
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client HTTP API客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建客户端
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient 替换底层http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ========== Project API ==========

// ListProjects 分页列出项目
func (c *Client) ListProjects(ctx context.Context, limit, offset int) (*dto.ListResponse[storage.Project], error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/v1/projects"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var data dto.ListResponse[storage.Project]
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ProjectDetail 项目详情
type ProjectDetail struct {
	storage.Project
	Tasks       []storage.Task           `json:"tasks"`
	UserStories []storage.UserStory      `json:"user_stories"`
	Duration    schedule.DurationSummary `json:"duration"`
}

// GetProject 获取项目详情
func (c *Client) GetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	var data ProjectDetail
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+url.PathEscape(id), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GenerateResult 完整生成结果
type GenerateResult struct {
	Project     storage.Project            `json:"project"`
	Tasks       []storage.Task             `json:"tasks"`
	UserStories []storage.UserStory        `json:"user_stories"`
	Metrics     planner.Metrics            `json:"metrics"`
	TechStack   planner.TechRecommendation `json:"tech_stack"`
}

// GenerateProject 生成完整项目计划
func (c *Client) GenerateProject(ctx context.Context, req dto.CreateProjectRequest) (*GenerateResult, error) {
	var data GenerateResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/generate", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GanttResult 排期和甘特图
type GanttResult struct {
	ProjectID string                   `json:"project_id"`
	Tasks     []storage.Task           `json:"tasks"`
	Duration  schedule.DurationSummary `json:"duration"`
	GanttCode string                   `json:"gantt_code"`
}

// GenerateGantt 重新排期并生成甘特图
func (c *Client) GenerateGantt(ctx context.Context, id string) (*GanttResult, error) {
	var data GanttResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+url.PathEscape(id)+"/generate-gantt", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DeleteProject 删除项目
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+url.PathEscape(id), nil, nil)
}

// ========== 其他 ==========

// RecommendTech 技术栈推荐
func (c *Client) RecommendTech(ctx context.Context, description string) (*planner.TechRecommendation, error) {
	var data planner.TechRecommendation
	if err := c.do(ctx, http.MethodPost, "/api/v1/tech-stack", dto.TechStackRequest{Description: description}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Health 健康检查
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var data dto.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ========== HTTP ==========

// do 发送请求并解开响应信封，data为nil时忽略响应数据
func (c *Client) do(ctx context.Context, method, path string, body, data interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}

	var envelope dto.APIResponse[json.RawMessage]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(raw))
	}
	if envelope.Code != 0 || resp.StatusCode >= http.StatusBadRequest {
		msg := envelope.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if data == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, data); err != nil {
		return fmt.Errorf("解析响应数据失败: %w", err)
	}
	return nil
}
