package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 死信队列key，发送失败的事件序列化后LPUSH到这里，便于事后排查/重放
const deadLetterKey = "ventas:notify:dead_letter"

// DeadLetter 失败事件的落盘通道
type DeadLetter interface {
	Push(event Event)
}

// RedisDeadLetter 基于Redis list的死信队列
type RedisDeadLetter struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisDeadLetter(rdb *redis.Client, logger *zap.Logger) *RedisDeadLetter {
	return &RedisDeadLetter{rdb: rdb, logger: logger}
}

func (d *RedisDeadLetter) Push(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("Failed to marshal dead letter event", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := d.rdb.LPush(ctx, deadLetterKey, data).Err(); err != nil {
		// 死信都写不进去时只能记日志
		d.logger.Error("Failed to push dead letter event",
			zap.String("event_type", event.Type),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}

// Dispatcher 通知派发器
// 带缓冲channel + 固定worker池；Enqueue永不阻塞调用方，
// 发送失败记日志并进死信队列，绝不向迁移调用方传播错误
type Dispatcher struct {
	notifiers  []Notifier
	deadLetter DeadLetter
	logger     *zap.Logger
	events     chan Event
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewDispatcher 创建派发器并启动worker
func NewDispatcher(notifiers []Notifier, deadLetter DeadLetter, logger *zap.Logger, workers, buffer int) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		notifiers:  notifiers,
		deadLetter: deadLetter,
		logger:     logger,
		events:     make(chan Event, buffer),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue 入队一个事件，队列满时直接落死信，不阻塞迁移请求
func (d *Dispatcher) Enqueue(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	select {
	case d.events <- event:
	default:
		d.logger.Warn("Notify queue full, sending event to dead letter",
			zap.String("event_type", event.Type),
			zap.String("entity_id", event.EntityID))
		if d.deadLetter != nil {
			d.deadLetter.Push(event)
		}
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.events {
		d.dispatch(event)
	}
}

func (d *Dispatcher) dispatch(event Event) {
	for _, n := range d.notifiers {
		if err := n.Notify(event); err != nil {
			d.logger.Warn("Notification failed",
				zap.String("event_type", event.Type),
				zap.String("entity_type", event.EntityType),
				zap.String("entity_id", event.EntityID),
				zap.Error(err))
			if d.deadLetter != nil {
				d.deadLetter.Push(event)
			}
		}
	}
}

// Close 停止接收新事件并等待在途事件发完（优雅关闭时调用）
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.events)
	})
	d.wg.Wait()
}
