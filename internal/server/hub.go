package server

import (
	"sync"

	"github.com/BaSui01/policyswarm/agent/conversation"
	"go.uber.org/zap"
)

// subscriberBuffer 每个订阅者缓冲的事件数，满了之后丢弃新事件
const subscriberBuffer = 64

// Hub 把回合事件广播给 /ws 订阅者，实现 conversation.Observer。
// 发布永不阻塞引擎。
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	last   *conversation.TurnEvent
	logger *zap.Logger
}

// Subscription 是一个订阅
type Subscription struct {
	C       chan conversation.TurnEvent
	dropped int
}

var _ conversation.Observer = (*Hub)(nil)

// NewHub 创建事件广播器
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With(zap.String("component", "event_hub")),
	}
}

// Subscribe 注册订阅者
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{C: make(chan conversation.TurnEvent, subscriberBuffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe 注销订阅者并关闭其通道
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.C)
	}
}

// Subscribers 返回当前订阅者数量
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Last 返回最近一次事件
func (h *Hub) Last() (conversation.TurnEvent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return conversation.TurnEvent{}, false
	}
	return *h.last, true
}

// OnTurn implements conversation.Observer
func (h *Hub) OnTurn(ev conversation.TurnEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = &ev
	for s := range h.subs {
		select {
		case s.C <- ev:
		default:
			s.dropped++
			h.logger.Debug("subscriber lagging, event dropped",
				zap.Int("turn", ev.Turn),
				zap.Int("dropped", s.dropped))
		}
	}
}
