package planner

// DefaultVelocity 每个迭代的默认故事点数
const DefaultVelocity = 20

// VelocityMetrics 敏捷度量
type VelocityMetrics struct {
	TotalPoints      int `json:"total_points"`
	SprintsNeeded    int `json:"sprints_needed"`
	VelocityEstimate int `json:"velocity_estimate"`
	MustHavePoints   int `json:"must_have_points"`
	ShouldHavePoints int `json:"should_have_points"`
	CouldHavePoints  int `json:"could_have_points"`
}

// CalculateVelocity 计算故事点汇总和所需迭代数（向下取整，至少为1）
func CalculateVelocity(stories []Story, velocity int) VelocityMetrics {
	if velocity <= 0 {
		velocity = DefaultVelocity
	}

	m := VelocityMetrics{VelocityEstimate: velocity}
	for _, s := range stories {
		m.TotalPoints += s.Points
		switch s.Priority {
		case MustHave:
			m.MustHavePoints += s.Points
		case ShouldHave:
			m.ShouldHavePoints += s.Points
		case CouldHave:
			m.CouldHavePoints += s.Points
		}
	}

	m.SprintsNeeded = m.TotalPoints / velocity
	if m.SprintsNeeded < 1 {
		m.SprintsNeeded = 1
	}
	return m
}
