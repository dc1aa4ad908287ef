package planner

import (
	"context"
	"fmt"
	"strings"
)

// MoSCoW 优先级
const (
	MustHave   = "Must Have"
	ShouldHave = "Should Have"
	CouldHave  = "Could Have"
	WontHave   = "Won't Have"
)

// DefaultSprintSize 每个迭代的默认故事数
const DefaultSprintSize = 5

// Story 生成的用户故事
type Story struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	Points             int    `json:"points"`
	Priority           string `json:"priority"`
	Status             string `json:"status"`
	Sprint             int    `json:"sprint"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
}

// StoryGenerator 根据项目描述生成用户故事
type StoryGenerator interface {
	GenerateStories(ctx context.Context, description string) ([]Story, error)
}

var (
	storyEcommerceKeywords = []string{"e-commerce", "ecommerce", "shop", "store", "cart", "checkout", "payment", "boutique", "panier", "paiement"}
	storyUserKeywords      = []string{"user", "account", "profile", "login", "utilisateur", "compte", "profil"}
	storyDashboardKeywords = []string{"dashboard", "analytics", "chart", "visualisation", "visualization", "tableau de bord", "graphique"}
)

// KeywordStoryGenerator 基于关键词的用户故事生成器
type KeywordStoryGenerator struct{}

// NewKeywordStoryGenerator 创建KeywordStoryGenerator
func NewKeywordStoryGenerator() *KeywordStoryGenerator {
	return &KeywordStoryGenerator{}
}

func criteria(items ...string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

// GenerateStories 生成用户故事，Sprint字段为建议值，最终由AssignSprints重新分配
func (g *KeywordStoryGenerator) GenerateStories(ctx context.Context, description string) ([]Story, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	description = NormalizeDescription(description)
	lower := strings.ToLower(description)

	isEcommerce := containsAny(lower, storyEcommerceKeywords...)
	hasUsers := containsAny(lower, storyUserKeywords...)
	hasAdmin := containsAny(lower, adminKeywords...)
	isDashboard := containsAny(lower, storyDashboardKeywords...)

	stories := make([]Story, 0, 12)
	add := func(title, desc string, points int, priority string, sprint int, accept string) {
		stories = append(stories, Story{
			Title:              title,
			Description:        desc,
			Points:             points,
			Priority:           priority,
			Status:             "todo",
			Sprint:             sprint,
			AcceptanceCriteria: accept,
		})
	}

	add("As a user, I want to use "+excerpt(description, 40),
		"Access and use the main features: "+excerpt(description, 80),
		8, MustHave, 1,
		criteria("Interface accessible", "Main features available", "Intuitive navigation"))

	if isEcommerce {
		add("As a customer, I want to add products to my cart so that I can shop",
			"Shopping cart with add, update and remove",
			8, MustHave, 1,
			criteria("Add to cart", "Change quantities", "Remove items", "Total computed"))
		add("As a customer, I want to pay so that I can complete my order",
			"Checkout flow with secure payment",
			13, MustHave, 1,
			criteria("Shipping form", "Payment method choice", "Secure payment", "Order confirmation"))
		add("As a customer, I want to see my orders so that I can track them",
			"Order history and tracking",
			5, ShouldHave, 2,
			criteria("Order list", "Order detail", "Delivery status"))
	}

	if hasUsers {
		add("As a user, I want to create an account so that I can access the system",
			"Sign-up with email and password",
			5, MustHave, 1,
			criteria("Sign-up form", "Email validation", "Account creation", "Confirmation email"))
		add("As a user, I want to log in so that I can reach my space",
			"Secure login",
			3, MustHave, 1,
			criteria("Login/password", "Password recovery", "Secure session"))
		add("As a user, I want to edit my profile so that my information stays current",
			"User profile management",
			3, ShouldHave, 2,
			criteria("Edit details", "Change password", "Upload avatar"))
	}

	if hasAdmin {
		add("As an admin, I want to manage content so that the system stays up to date",
			"CRUD administration panel",
			13, MustHave, 2,
			criteria("Admin interface", "Full CRUD", "Search and filters", "Data export"))
		add("As an admin, I want to see statistics so that I can follow activity",
			"Dashboard with key metrics",
			8, ShouldHave, 2,
			criteria("Live metrics", "Charts", "Report export"))
	}

	if isDashboard {
		add("As a user, I want to visualise my data so that I can make decisions",
			"Interactive dashboard",
			13, MustHave, 1,
			criteria("Interactive charts", "Time filters", "Data export"))
	}

	add("As a user, I want to receive notifications so that I stay informed",
		"Notification system",
		5, CouldHave, 3,
		criteria("Live notifications", "History", "Notification preferences"))
	add("As a user, I want to use the application on mobile so that I can access it anywhere",
		"Responsive mobile interface",
		8, ShouldHave, 3,
		criteria("Responsive design", "Touch friendly", "Mobile performance"))

	return stories, nil
}

// AssignSprints 按顺序将故事分配到迭代：第i个故事（从0开始）进入 i/sprintSize+1
func AssignSprints(stories []Story, sprintSize int) []Story {
	if sprintSize <= 0 {
		sprintSize = DefaultSprintSize
	}
	for i := range stories {
		stories[i].Sprint = i/sprintSize + 1
	}
	return stories
}
