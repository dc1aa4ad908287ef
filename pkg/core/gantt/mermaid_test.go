package gantt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

func TestMermaid(t *testing.T) {
	tasks := schedule.CreateSchedule([]schedule.TaskDescriptor{
		{ID: "1", Title: "Analysis", Duration: 3, Status: schedule.StatusDone},
		{ID: "2", Title: "Build: API", Duration: 5, Dependencies: schedule.DependencyList{"1"}, Status: schedule.StatusInProgress},
		{ID: "3", Duration: 0},
	}, schedule.MustParseDate("2024-01-01"))

	code := Mermaid("Shop", tasks)
	lines := strings.Split(code, "\n")
	require.Len(t, lines, 7)

	assert.Equal(t, "gantt", lines[0])
	assert.Equal(t, "    title Shop", lines[1])
	assert.Equal(t, "    dateFormat YYYY-MM-DD", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "    Analysis :done, 2024-01-01, 3d", lines[4])
	assert.Equal(t, "    Task :crit, 2024-01-01, 1d", lines[5])
	assert.Equal(t, "    Build - API :active, 2024-01-04, 5d", lines[6])
}

func TestMermaid_Empty(t *testing.T) {
	assert.Equal(t, "gantt\n    title P\n    dateFormat YYYY-MM-DD\n", Mermaid("P", nil))
}
