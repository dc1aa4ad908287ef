package planner

import (
	"strings"
)

// Technology 一项技术推荐
type Technology struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Reason   string   `json:"reason"`
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
	Priority string   `json:"priority"`
}

// StackRecommendations 按类别分组的推荐
type StackRecommendations struct {
	Frontend []Technology `json:"frontend"`
	Backend  []Technology `json:"backend"`
	Database []Technology `json:"database"`
	DevOps   []Technology `json:"devops"`
	Tools    []Technology `json:"tools"`
}

// TechRecommendation 技术栈推荐结果
type TechRecommendation struct {
	ProjectType     string               `json:"project_type"`
	Recommendations StackRecommendations `json:"recommendations"`
	Summary         string               `json:"summary"`
}

// 推荐级别
const (
	LevelEssential   = "Essential"
	LevelRequired    = "Required"
	LevelRecommended = "Recommended"
	LevelAlternative = "Alternative"
	LevelOptional    = "Optional"
	LevelUseful      = "Useful"
)

// TechAdvisor 基于关键词的技术栈顾问
type TechAdvisor struct{}

// NewTechAdvisor 创建TechAdvisor
func NewTechAdvisor() *TechAdvisor {
	return &TechAdvisor{}
}

// Recommend 根据项目描述推荐技术栈
func (a *TechAdvisor) Recommend(description string) TechRecommendation {
	lower := strings.ToLower(NormalizeDescription(description))

	isWeb := containsAny(lower, "site", "web")
	isMobile := containsAny(lower, mobileKeywords...)
	isAPI := containsAny(lower, "api", "backend", "server", "serveur")
	isEcommerce := containsAny(lower, "e-commerce", "ecommerce", "shop", "store", "boutique")
	isDashboard := containsAny(lower, "dashboard", "analytics", "tableau de bord")
	isRealtime := containsAny(lower, "realtime", "real-time", "real time", "temps réel", "chat", "notification")

	r := StackRecommendations{
		Frontend: make([]Technology, 0),
		Backend:  make([]Technology, 0),
		Database: make([]Technology, 0),
		DevOps:   make([]Technology, 0),
		Tools:    make([]Technology, 0),
	}

	if isWeb {
		r.Frontend = append(r.Frontend,
			Technology{Name: "React + Next.js", Category: "Frontend framework",
				Reason: "Fast SSR, SEO friendly, rich ecosystem",
				Pros:   []string{"Excellent performance", "SEO friendly", "Great DX"},
				Cons:   []string{"Learning curve", "Bundle size"}, Priority: LevelRecommended},
			Technology{Name: "TailwindCSS", Category: "CSS framework",
				Reason: "Utility-first, easy responsive layouts, customisable",
				Pros:   []string{"Fast to build with", "Consistent", "Small output"},
				Cons:   []string{"Verbose markup"}, Priority: LevelRecommended},
		)
		if isDashboard {
			r.Frontend = append(r.Frontend, Technology{Name: "Recharts / Chart.js", Category: "Visualisation",
				Reason: "Interactive charts for dashboards",
				Pros:   []string{"Easy to use", "Customisable"},
				Cons:   []string{"Slow on large datasets"}, Priority: LevelOptional})
		}
	}

	if isMobile {
		r.Frontend = append(r.Frontend,
			Technology{Name: "React Native", Category: "Mobile framework",
				Reason: "Shared iOS/Android code, large community",
				Pros:   []string{"Cross-platform", "Shares code with web", "Native performance"},
				Cons:   []string{"Some native modules required"}, Priority: LevelRecommended},
			Technology{Name: "Expo", Category: "Mobile toolchain",
				Reason: "Quick setup, OTA updates, easy development",
				Pros:   []string{"Simple setup", "OTA updates", "Cloud builds"},
				Cons:   []string{"Limits on native modules"}, Priority: LevelRecommended},
		)
	}

	if isAPI || isWeb || isMobile {
		r.Backend = append(r.Backend,
			Technology{Name: "Go + Gin", Category: "Backend framework",
				Reason: "Fast REST APIs, static typing, single binary deployment",
				Pros:   []string{"Very fast", "Simple concurrency", "Small footprint"},
				Cons:   []string{"More boilerplate than dynamic languages"}, Priority: LevelRecommended},
			Technology{Name: "Alternative: Node.js + Express", Category: "Backend framework",
				Reason: "Full-stack JavaScript, huge ecosystem",
				Pros:   []string{"One language", "NPM ecosystem", "Async"},
				Cons:   []string{"Less structured"}, Priority: LevelAlternative},
		)
	}

	if isEcommerce {
		r.Backend = append(r.Backend, Technology{Name: "Stripe API", Category: "Payments",
			Reason: "Complete and secure payment platform",
			Pros:   []string{"Easy to integrate", "Very secure", "Global"},
			Cons:   []string{"Transaction fees"}, Priority: LevelRecommended})
	}

	if isRealtime {
		r.Backend = append(r.Backend, Technology{Name: "WebSockets", Category: "Real-time",
			Reason: "Bidirectional real-time communication",
			Pros:   []string{"Low latency", "Easy to use"},
			Cons:   []string{"Scaling complexity"}, Priority: LevelRequired})
	}

	r.Database = append(r.Database, Technology{Name: "PostgreSQL", Category: "Database",
		Reason: "Robust relational store, ACID, performant",
		Pros:   []string{"Reliable", "Feature rich", "Open source"},
		Cons:   []string{"Initial setup"}, Priority: LevelRecommended})

	if isRealtime || isDashboard {
		r.Database = append(r.Database, Technology{Name: "Redis", Category: "Cache / Real-time",
			Reason: "Very fast cache, pub/sub for real-time features",
			Pros:   []string{"Extremely fast", "Native pub/sub"},
			Cons:   []string{"Memory bound"}, Priority: LevelRecommended})
	}

	r.DevOps = append(r.DevOps,
		Technology{Name: "Docker", Category: "Containers",
			Reason: "Consistent deployments, isolation",
			Pros:   []string{"Portable", "Reproducible", "Scalable"},
			Cons:   []string{"Learning curve"}, Priority: LevelRecommended},
		Technology{Name: "GitHub Actions", Category: "CI/CD",
			Reason: "CI/CD built into GitHub, easy to set up",
			Pros:   []string{"Free for public projects", "Well integrated"},
			Cons:   []string{"Limited free minutes"}, Priority: LevelRecommended},
	)

	if isWeb {
		r.DevOps = append(r.DevOps, Technology{Name: "Vercel / Netlify", Category: "Frontend hosting",
			Reason: "Automatic deploys, global CDN, free TLS",
			Pros:   []string{"Simple", "Fast", "CDN"},
			Cons:   []string{"Vendor lock-in"}, Priority: LevelRecommended})
	}

	r.Tools = append(r.Tools,
		Technology{Name: "Git + GitHub", Category: "Version control",
			Reason: "Industry standard, easy collaboration",
			Pros:   []string{"Standard", "Free", "Many integrations"},
			Cons:   []string{"None"}, Priority: LevelEssential},
		Technology{Name: "VSCode", Category: "IDE",
			Reason: "Rich extensions, lightweight, free",
			Pros:   []string{"Free", "Fast", "Extensions"},
			Cons:   []string{"Can be slow on large projects"}, Priority: LevelRecommended},
	)

	if isAPI {
		r.Tools = append(r.Tools, Technology{Name: "Postman / Insomnia", Category: "API testing",
			Reason: "API testing and documentation",
			Pros:   []string{"Visual", "Collections", "Mocking"},
			Cons:   []string{"Can be heavy"}, Priority: LevelUseful})
	}

	return TechRecommendation{
		ProjectType:     detectProjectType(lower),
		Recommendations: r,
		Summary:         summarize(r),
	}
}

// detectProjectType 项目类型，按优先级匹配
func detectProjectType(lower string) string {
	switch {
	case containsAny(lower, "e-commerce", "ecommerce"):
		return "E-commerce"
	case strings.Contains(lower, "mobile"):
		return "Mobile application"
	case containsAny(lower, "dashboard", "tableau de bord"):
		return "Dashboard / Analytics"
	case strings.Contains(lower, "api"):
		return "Backend API"
	case containsAny(lower, "site", "web"):
		return "Web application"
	default:
		return "Software project"
	}
}

func names(techs []Technology, n int) string {
	if len(techs) > n {
		techs = techs[:n]
	}
	out := make([]string, len(techs))
	for i, t := range techs {
		out[i] = t.Name
	}
	return strings.Join(out, ", ")
}

// summarize 一行摘要：前两个前端、前两个后端、第一个数据库
func summarize(r StackRecommendations) string {
	parts := make([]string, 0, 3)
	if len(r.Frontend) > 0 {
		parts = append(parts, "Frontend: "+names(r.Frontend, 2))
	}
	if len(r.Backend) > 0 {
		parts = append(parts, "Backend: "+names(r.Backend, 2))
	}
	if len(r.Database) > 0 {
		parts = append(parts, "Database: "+names(r.Database, 1))
	}
	return strings.Join(parts, " | ")
}
