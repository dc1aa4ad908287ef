package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/LENAX/plan-engine/pkg/logx"
)

// Topic 所有项目事件共用的主题
const Topic = "plan-engine.events"

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Bus 事件总线接口（对外导出）
type Bus interface {
	Publisher
	// Subscribe 订阅全部事件，ctx取消后通道关闭
	Subscribe(ctx context.Context) (<-chan Event, error)
	Close() error
}

// GoChannelBus 进程内事件总线
type GoChannelBus struct {
	pubsub *gochannel.GoChannel
	log    logx.Logger

	mu     sync.RWMutex
	closed bool
}

// NewGoChannelBus 创建进程内事件总线
func NewGoChannelBus(log logx.Logger) *GoChannelBus {
	log = log.With(logx.String("component", "events"))
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            64,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		NewWatermillLogger(log),
	)
	return &GoChannelBus{pubsub: pubsub, log: log}
}

// Publish 发布事件
func (b *GoChannelBus) Publish(ctx context.Context, event *Event) error {
	if event == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("event bus closed")
	}

	if event.ID == "" {
		event.ID = watermill.NewUUID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("project_id", event.ProjectID)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339Nano))

	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// Subscribe 订阅事件
func (b *GoChannelBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, fmt.Errorf("event bus closed")
	}

	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("订阅事件失败: %w", err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.log.Warn("⚠️ drop undecodable event", logx.String("message_id", msg.UUID), logx.Err(err))
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close 关闭总线，所有订阅通道随之关闭
func (b *GoChannelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}

// PublishQuietly 发布事件，失败只记录日志
func PublishQuietly(ctx context.Context, p Publisher, log logx.Logger, event *Event) {
	if p == nil || event == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Warn("⚠️ publish event failed", logx.String("type", string(event.Type)), logx.Err(err))
	}
}
