package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// 任务优先级
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// GeneratedTask 生成器产出的任务
type GeneratedTask struct {
	schedule.TaskDescriptor
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// generationInfo 生成器附加的字段
type generationInfo struct {
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// UnmarshalJSON 嵌入的TaskDescriptor有自己的解码方法，附加字段单独解码
func (t *GeneratedTask) UnmarshalJSON(data []byte) error {
	if err := t.TaskDescriptor.UnmarshalJSON(data); err != nil {
		return err
	}
	var info generationInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return err
	}
	t.Description, t.Order = info.Description, info.Order
	return nil
}

// TaskGenerator 根据项目描述生成任务列表
type TaskGenerator interface {
	GenerateTasks(ctx context.Context, description string) ([]GeneratedTask, error)
}

// 项目类型关键词（英文 + 法文）
var (
	webKeywords       = []string{"site", "web", "application", "frontend", "backend", "api"}
	ecommerceKeywords = []string{"e-commerce", "ecommerce", "shop", "store", "cart", "checkout", "payment", "stripe", "paypal", "boutique", "panier", "paiement"}
	mobileKeywords    = []string{"mobile", "ios", "android"}
	authKeywords      = []string{"authentication", "login", "sign in", "signup", "account", "user", "authentification", "utilisateur", "compte"}
	adminKeywords     = []string{"admin", "back office", "backoffice", "management", "gestion"}
)

// KeywordTaskGenerator 基于关键词的任务生成器
// 输出是确定的：同一描述总是得到同样的任务、ID（"1".."n"）和依赖。
type KeywordTaskGenerator struct{}

// NewKeywordTaskGenerator 创建KeywordTaskGenerator
func NewKeywordTaskGenerator() *KeywordTaskGenerator {
	return &KeywordTaskGenerator{}
}

// taskList 按顺序追加任务并分配递增ID
type taskList struct {
	tasks []GeneratedTask
}

// next 下一个任务的ID
func (l *taskList) next() int {
	return len(l.tasks) + 1
}

// back 距离下一个任务n位之前的任务ID（back(1)为上一个任务）
func (l *taskList) back(n int) string {
	return fmt.Sprint(l.next() - n)
}

func (l *taskList) add(title, description string, duration int, priority, deps string) {
	id := l.next()
	l.tasks = append(l.tasks, GeneratedTask{
		TaskDescriptor: schedule.TaskDescriptor{
			ID:           schedule.TaskID(fmt.Sprint(id)),
			Title:        title,
			Duration:     duration,
			Dependencies: schedule.ParseDependencies(deps),
			Priority:     priority,
			Status:       schedule.StatusTodo,
		},
		Description: description,
		Order:       id - 1,
	})
}

// GenerateTasks 生成任务列表
func (g *KeywordTaskGenerator) GenerateTasks(ctx context.Context, description string) ([]GeneratedTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	description = NormalizeDescription(description)
	lower := strings.ToLower(description)

	isWeb := containsAny(lower, webKeywords...)
	isEcommerce := containsAny(lower, ecommerceKeywords...)
	isMobile := containsAny(lower, mobileKeywords...)
	hasAuth := containsAny(lower, authKeywords...)
	hasAdmin := containsAny(lower, adminKeywords...)

	l := &taskList{}

	// 规划
	l.add("Requirements analysis - "+excerpt(description, 50),
		"Analyse and document the requirements for: "+excerpt(description, 100),
		3, PriorityHigh, "")
	l.add("System architecture design",
		"Define the technical architecture, patterns and technologies",
		4, PriorityHigh, "1")
	if isWeb || isMobile {
		l.add("UI/UX design and mockups",
			"Create the mockups and define the user experience",
			5, PriorityHigh, "1")
	}

	// 环境
	l.add("Development environment setup",
		"Set up Git, CI/CD and development tooling",
		2, PriorityMedium, "2")
	l.add("Database initialisation",
		"Create schemas, migrations and seed data",
		2, PriorityHigh, l.back(1))

	// 后端
	if isWeb || isMobile || isEcommerce {
		l.add("REST API development",
			"Build the main API endpoints",
			7, PriorityHigh, l.back(1))
	}
	if hasAuth {
		l.add("Authentication system",
			"Implement login, registration and sessions",
			4, PriorityHigh, l.back(1))
	}
	if isEcommerce {
		l.add("Shopping cart",
			"Cart with product add and remove",
			5, PriorityHigh, l.back(2))
		l.add("Payment integration (Stripe/PayPal)",
			"Implement a secure checkout flow",
			6, PriorityHigh, l.back(1))
		l.add("Stock management",
			"Inventory and stock tracking",
			4, PriorityMedium, l.back(2))
	}

	// 前端
	if isWeb {
		l.add("UI components development",
			"Build the reusable interface components",
			6, PriorityHigh, "3")
		l.add("Frontend-backend integration",
			"Connect the interface to the API",
			5, PriorityHigh, l.back(1))
	}
	if hasAdmin {
		l.add("Administration panel",
			"Complete administration interface",
			7, PriorityMedium, l.back(1))
	}

	// 测试
	l.add("Unit tests",
		"Write and run the unit tests",
		4, PriorityMedium, "")
	l.add("Integration tests",
		"Test the integration between modules",
		3, PriorityMedium, l.back(1))

	// 部署
	l.add("Production server setup",
		"Server, TLS and domain configuration",
		2, PriorityHigh, "")
	l.add("Production deployment",
		"First deployment and go-live",
		2, PriorityHigh, l.back(2)+","+l.back(1))
	l.add("Documentation and training",
		"Technical and user documentation",
		3, PriorityMedium, "")

	return l.tasks, nil
}

// Descriptors 提取排期输入
func Descriptors(tasks []GeneratedTask) []schedule.TaskDescriptor {
	out := make([]schedule.TaskDescriptor, len(tasks))
	for i, t := range tasks {
		out[i] = t.TaskDescriptor
	}
	return out
}
