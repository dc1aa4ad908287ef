package dag

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

func desc(id, deps string) schedule.TaskDescriptor {
	return schedule.TaskDescriptor{ID: schedule.TaskID(id), Duration: 1, Dependencies: schedule.ParseDependencies(deps)}
}

func TestAnalyze_Clean(t *testing.T) {
	report := Analyze([]schedule.TaskDescriptor{
		desc("1", ""),
		desc("2", "1"),
		desc("3", "1"),
		desc("4", "2,3"),
	})

	assert.True(t, report.Clean())
	assert.Empty(t, report.Issues())
	assert.Equal(t, [][]schedule.TaskID{{"1"}, {"2", "3"}, {"4"}}, report.Levels)
}

func TestAnalyze_Problems(t *testing.T) {
	t.Run("前向引用", func(t *testing.T) {
		report := Analyze([]schedule.TaskDescriptor{desc("1", "2"), desc("2", "")})
		assert.False(t, report.Clean())
		assert.Equal(t, []Reference{{TaskID: "1", DependsOn: "2"}}, report.ForwardRefs)
		// 前向引用仍是合法的图边
		assert.Equal(t, [][]schedule.TaskID{{"2"}, {"1"}}, report.Levels)
	})

	t.Run("未知引用", func(t *testing.T) {
		report := Analyze([]schedule.TaskDescriptor{desc("1", "99")})
		assert.Equal(t, []Reference{{TaskID: "1", DependsOn: "99"}}, report.UnknownRefs)
		assert.Len(t, report.Issues(), 1)
	})

	t.Run("自引用和重复ID", func(t *testing.T) {
		report := Analyze([]schedule.TaskDescriptor{desc("1", "1,1"), desc("1", ""), desc("1", "")})
		assert.Equal(t, []schedule.TaskID{"1"}, report.SelfRefs)
		assert.Equal(t, []schedule.TaskID{"1"}, report.DuplicateIDs)
	})

	t.Run("循环", func(t *testing.T) {
		report := Analyze([]schedule.TaskDescriptor{
			desc("a", "c"),
			desc("b", "a"),
			desc("c", "b"),
			desc("d", ""),
		})
		assert.Equal(t, []schedule.TaskID{"a", "b", "c", "a"}, report.Cycle)
		assert.Nil(t, report.Levels)
		assert.NotEmpty(t, report.Issues())
	})
}

func TestBuild(t *testing.T) {
	g, err := Build([]schedule.TaskDescriptor{
		desc("1", ""),
		desc("2", "1"),
		desc("3", ""),
		desc("2", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Size())
	assert.Equal(t, []schedule.TaskID{"1", "3"}, g.Roots())

	_, err = Build([]schedule.TaskDescriptor{desc("1", "2"), desc("2", "1")})
	assert.Error(t, err)
}

func TestBuild_ManyTasks(t *testing.T) {
	tasks := make([]schedule.TaskDescriptor, 0, 20)
	tasks = append(tasks, desc("0", ""))
	for i := 1; i < 20; i++ {
		tasks = append(tasks, desc(strconv.Itoa(i), strconv.Itoa(i-1)))
	}

	g, err := Build(tasks)
	require.NoError(t, err)
	assert.Equal(t, 20, g.Size())
	assert.Equal(t, []schedule.TaskID{"0"}, g.Roots())

	levels, err := g.Levels()
	require.NoError(t, err)
	require.Len(t, levels, 20)
	assert.Equal(t, []schedule.TaskID{"19"}, levels[19])

	report := Analyze(tasks)
	assert.True(t, report.Clean())
	assert.Len(t, report.Levels, 20)
}
