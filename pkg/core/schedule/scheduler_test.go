package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func task(id string, duration int, deps string) TaskDescriptor {
	return TaskDescriptor{ID: TaskID(id), Title: "task " + id, Duration: duration, Dependencies: ParseDependencies(deps)}
}

func byID(tasks []ScheduledTask) map[TaskID]ScheduledTask {
	m := make(map[TaskID]ScheduledTask, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func TestCreateSchedule_ChainAndParallel(t *testing.T) {
	start := MustParseDate("2024-01-01")
	tasks := []TaskDescriptor{
		task("1", 2, ""),
		task("2", 3, "1"),
		task("3", 1, ""),
	}

	result := CreateSchedule(tasks, start)
	require.Len(t, result, 3)

	// 按开始日期稳定排序：1、3同为01-01，保持输入顺序，2在01-03
	assert.Equal(t, TaskID("1"), result[0].ID)
	assert.Equal(t, TaskID("3"), result[1].ID)
	assert.Equal(t, TaskID("2"), result[2].ID)

	got := byID(result)
	assert.Equal(t, "2024-01-01", got["1"].Start.String())
	assert.Equal(t, "2024-01-03", got["1"].End.String())
	assert.Equal(t, "2024-01-03", got["2"].Start.String())
	assert.Equal(t, "2024-01-06", got["2"].End.String())
	assert.Equal(t, "2024-01-01", got["3"].Start.String())
	assert.Equal(t, "2024-01-02", got["3"].End.String())

	summary := CalculateProjectDuration(result)
	assert.Equal(t, 6, summary.TotalDays)
	require.NotNil(t, summary.StartDate)
	require.NotNil(t, summary.EndDate)
	assert.Equal(t, "2024-01-01", summary.StartDate.String())
	assert.Equal(t, "2024-01-06", summary.EndDate.String())
}

func TestCreateSchedule_EmptyInput(t *testing.T) {
	result := CreateSchedule(nil, MustParseDate("2024-01-01"))
	assert.NotNil(t, result)
	assert.Empty(t, result)

	summary := CalculateProjectDuration(result)
	assert.Equal(t, 0, summary.TotalDays)
	assert.Nil(t, summary.StartDate)
	assert.Nil(t, summary.EndDate)
}

func TestCreateSchedule_DefaultDuration(t *testing.T) {
	start := MustParseDate("2024-03-10")
	result := CreateSchedule([]TaskDescriptor{task("a", 0, ""), task("b", -4, "")}, start)

	for _, st := range result {
		assert.Equal(t, start, st.Start)
		assert.Equal(t, start.AddDays(1), st.End)
	}
}

func TestCreateSchedule_DependencyHandling(t *testing.T) {
	start := MustParseDate("2024-01-01")

	t.Run("前向引用被忽略", func(t *testing.T) {
		result := byID(CreateSchedule([]TaskDescriptor{
			task("1", 2, "2"),
			task("2", 3, ""),
		}, start))
		assert.Equal(t, start, result["1"].Start)
		assert.Equal(t, start, result["2"].Start)
	})

	t.Run("未知依赖被忽略", func(t *testing.T) {
		result := CreateSchedule([]TaskDescriptor{task("1", 2, "99")}, start)
		require.Len(t, result, 1)
		assert.Equal(t, start, result[0].Start)
		assert.Equal(t, "2024-01-03", result[0].End.String())
	})

	t.Run("自引用被忽略", func(t *testing.T) {
		result := CreateSchedule([]TaskDescriptor{task("1", 2, "1")}, start)
		assert.Equal(t, start, result[0].Start)
	})

	t.Run("取依赖中最晚的结束日期", func(t *testing.T) {
		result := byID(CreateSchedule([]TaskDescriptor{
			task("1", 2, ""),
			task("2", 5, ""),
			task("3", 1, "1, 2"),
		}, start))
		assert.Equal(t, result["2"].End, result["3"].Start)
		assert.Equal(t, "2024-01-06", result["3"].Start.String())
	})

	t.Run("重复ID以后者为准", func(t *testing.T) {
		result := CreateSchedule([]TaskDescriptor{
			task("1", 2, ""),
			task("1", 4, ""),
			task("2", 1, "1"),
		}, start)
		require.Len(t, result, 3)
		last := result[len(result)-1]
		assert.Equal(t, TaskID("2"), last.ID)
		assert.Equal(t, "2024-01-05", last.Start.String())
	})

	t.Run("依赖只会推迟开始日期", func(t *testing.T) {
		result := CreateSchedule([]TaskDescriptor{
			task("1", 1, ""),
			task("2", 1, "1"),
		}, start)
		for _, st := range result {
			assert.False(t, st.Start.Before(start))
		}
	})
}

func TestCreateSchedule_Invariants(t *testing.T) {
	start := MustParseDate("2024-02-27")
	tasks := []TaskDescriptor{
		task("1", 3, ""),
		task("2", 4, "1"),
		task("3", 5, "1"),
		task("4", 2, "2"),
		task("5", 2, "4"),
		task("6", 7, ""),
		task("7", 4, "5,6"),
	}

	first := CreateSchedule(tasks, start)
	second := CreateSchedule(tasks, start)
	assert.Equal(t, first, second)

	got := byID(first)
	for _, st := range first {
		assert.Equal(t, st.Start.AddDays(st.EffectiveDuration()), st.End)
		assert.False(t, st.Start.Before(start))
		for _, dep := range st.Dependencies {
			assert.False(t, st.Start.Before(got[dep].End), "task %s starts before dependency %s ends", st.ID, dep)
		}
	}
	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].Start.Before(first[i-1].Start))
	}

	// 跨越闰日
	assert.Equal(t, "2024-03-01", got["1"].End.String())
}

func TestCreateSchedule_DoesNotMutateInput(t *testing.T) {
	tasks := []TaskDescriptor{task("1", 1, ""), task("2", 1, "1")}
	result := CreateSchedule(tasks, MustParseDate("2024-01-01"))

	result[1].Dependencies[0] = "changed"
	assert.Equal(t, TaskID("1"), tasks[1].Dependencies[0])
}

func TestCalculateProjectDuration_MissingDates(t *testing.T) {
	tasks := []ScheduledTask{
		{TaskDescriptor: task("1", 1, ""), Start: MustParseDate("2024-01-05")},
		{TaskDescriptor: task("2", 1, ""), End: MustParseDate("2024-01-09")},
		{TaskDescriptor: task("3", 1, ""), Start: MustParseDate("2024-01-03"), End: MustParseDate("2024-01-04")},
	}

	summary := CalculateProjectDuration(tasks)
	assert.Equal(t, 7, summary.TotalDays)
	assert.Equal(t, "2024-01-03", summary.StartDate.String())
	assert.Equal(t, "2024-01-09", summary.EndDate.String())

	onlyStarts := CalculateProjectDuration([]ScheduledTask{{Start: MustParseDate("2024-01-01")}})
	assert.Equal(t, DurationSummary{}, onlyStarts)
}

func TestTaskDescriptor_JSON(t *testing.T) {
	t.Run("整数ID和字符串依赖", func(t *testing.T) {
		var d TaskDescriptor
		require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "title": "API", "duration_days": 7, "dependencies": "1, 2"}`), &d))
		assert.Equal(t, TaskID("3"), d.ID)
		assert.Equal(t, DependencyList{"1", "2"}, d.Dependencies)
	})

	t.Run("数组依赖", func(t *testing.T) {
		var d TaskDescriptor
		require.NoError(t, json.Unmarshal([]byte(`{"id": "b", "dependencies": ["a", 2, " "]}`), &d))
		assert.Equal(t, DependencyList{"a", "2"}, d.Dependencies)
	})

	t.Run("非法依赖", func(t *testing.T) {
		var d TaskDescriptor
		assert.Error(t, json.Unmarshal([]byte(`{"id": "b", "dependencies": {"x": 1}}`), &d))
	})

	t.Run("排期结果输出", func(t *testing.T) {
		st := CreateSchedule([]TaskDescriptor{task("1", 2, "")}, MustParseDate("2024-01-01"))[0]
		data, err := json.Marshal(st)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1","title":"task 1","duration_days":2,"dependencies":null,"start_date":"2024-01-01","end_date":"2024-01-03"}`, string(data))
	})
}

func TestTaskDescriptor_YAML(t *testing.T) {
	doc := `
- id: 1
  title: Analysis
  duration_days: 3
- id: 2
  duration_days: 4
  dependencies: 1
- id: 3
  dependencies: [1, "2"]
`
	var tasks []TaskDescriptor
	require.NoError(t, yaml.Unmarshal([]byte(doc), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, TaskID("1"), tasks[0].ID)
	assert.Equal(t, DependencyList{"1"}, tasks[1].Dependencies)
	assert.Equal(t, DependencyList{"1", "2"}, tasks[2].Dependencies)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-01-31T10:20:30Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", d.String())
	assert.Equal(t, "2024-02-01", d.AddDays(1).String())
	assert.Equal(t, 30, MustParseDate("2024-01-01").DaysUntil(d))

	_, err = ParseDate("31/01/2024")
	assert.Error(t, err)

	var zero Date
	assert.True(t, zero.IsZero())
	data, err := json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var scanned Date
	require.NoError(t, scanned.Scan([]byte("2024-05-06")))
	assert.Equal(t, NewDate(2024, 5, 6), scanned)
	v, err := scanned.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06", v)
}

func TestCreateScheduleIndexed_DuplicateIDs(t *testing.T) {
	tasks := []TaskDescriptor{
		task("y", 3, ""),
		task("x", 2, "y"),
		task("x", 1, ""),
	}
	scheduled, positions := CreateScheduleIndexed(tasks, MustParseDate("2024-01-01"))
	require.Len(t, scheduled, 3)
	assert.Equal(t, []int{0, 2, 1}, positions)

	for i, st := range scheduled {
		in := tasks[positions[i]]
		assert.Equal(t, in.Duration, st.Start.DaysUntil(st.End))
		assert.Equal(t, in.ID, st.ID)
	}
	assert.Equal(t, scheduled, CreateSchedule(tasks, MustParseDate("2024-01-01")))
}

func TestCalculateProjectDuration_LongSpan(t *testing.T) {
	start := MustParseDate("2024-01-01")
	scheduled := CreateSchedule([]TaskDescriptor{task("1", 110000, "")}, start)

	summary := CalculateProjectDuration(scheduled)
	assert.Equal(t, "2325-03-04", summary.EndDate.String())
	assert.Equal(t, 110001, summary.TotalDays)
	assert.Equal(t, -110000, scheduled[0].End.DaysUntil(start))
}

func TestTaskDescriptor_DurationAlias(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var d TaskDescriptor
		require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "duration": 4}`), &d))
		assert.Equal(t, 4, d.EffectiveDuration())

		require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "duration": 4, "duration_days": 6}`), &d))
		assert.Equal(t, 6, d.Duration)
	})

	t.Run("YAML", func(t *testing.T) {
		var tasks []TaskDescriptor
		require.NoError(t, yaml.Unmarshal([]byte("- {id: a, duration: 5, dependencies: b}\n"), &tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, 5, tasks[0].Duration)
		assert.Equal(t, DependencyList{"b"}, tasks[0].Dependencies)
	})

	t.Run("排期结果解码", func(t *testing.T) {
		var st ScheduledTask
		require.NoError(t, json.Unmarshal([]byte(`{"id": "1", "duration": 2, "start_date": "2024-01-01", "end_date": "2024-01-03"}`), &st))
		assert.Equal(t, 2, st.Duration)
		assert.Equal(t, "2024-01-03", st.End.String())

		var fromYAML ScheduledTask
		require.NoError(t, yaml.Unmarshal([]byte("id: 1\nduration_days: 2\nstart_date: 2024-01-01\nend_date: 2024-01-03\n"), &fromYAML))
		assert.Equal(t, st.Start, fromYAML.Start)
		assert.Equal(t, 2, fromYAML.Duration)
	})
}

func TestParseDate_RejectsZeroValue(t *testing.T) {
	_, err := ParseDate("0001-01-01")
	assert.Error(t, err)

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"0001-01-01"`), &d))

	d, err = ParseDate("0001-01-02")
	require.NoError(t, err)
	assert.False(t, d.IsZero())
}
