package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/logx"
)

func TestEventType_Constants(t *testing.T) {
	assert.Equal(t, EventType("project.created"), EventProjectCreated)
	assert.Equal(t, EventType("schedule.generated"), EventScheduleGenerated)
	assert.Equal(t, EventType("task.status_changed"), EventTaskStatusChanged)
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventTasksGenerated, "p-1", TasksGeneratedPayload{Count: 4})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "p-1", event.ProjectID)
	assert.NotZero(t, event.Timestamp)

	var payload TasksGeneratedPayload
	require.NoError(t, event.DecodePayload(&payload))
	assert.Equal(t, 4, payload.Count)

	empty := NewEvent(EventProjectDeleted, "p-1", nil)
	assert.Nil(t, empty.Payload)
	require.NoError(t, empty.DecodePayload(&payload))
}

func TestGoChannelBus_PublishSubscribe(t *testing.T) {
	bus := NewGoChannelBus(logx.Nop())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	sent := NewEvent(EventTaskStatusChanged, "p-9", TaskStatusChangedPayload{TaskID: "t", From: "todo", To: "done"})
	require.NoError(t, bus.Publish(context.Background(), sent))

	select {
	case got := <-ch:
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, EventTaskStatusChanged, got.Type)
		var payload TaskStatusChangedPayload
		require.NoError(t, got.DecodePayload(&payload))
		assert.Equal(t, "done", payload.To)
	case <-time.After(2 * time.Second):
		t.Fatal("事件未送达")
	}

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("取消订阅后通道未关闭")
	}
}

func TestGoChannelBus_Closed(t *testing.T) {
	bus := NewGoChannelBus(logx.Nop())
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.Error(t, bus.Publish(context.Background(), NewEvent(EventProjectCreated, "p", nil)))
	_, err := bus.Subscribe(context.Background())
	assert.Error(t, err)

	// nil 发布者与 nil 事件被忽略
	PublishQuietly(context.Background(), nil, logx.Nop(), NewEvent(EventProjectCreated, "p", nil))
	PublishQuietly(context.Background(), bus, logx.Nop(), nil)
}
