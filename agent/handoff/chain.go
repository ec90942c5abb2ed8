package handoff

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status 交接状态
type Status string

const (
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// DefaultMaxDepth 每回合最多一次交接
const DefaultMaxDepth = 1

// Handoff 是一次交接记录
type Handoff struct {
	ID        string    `json:"id"`
	Turn      int       `json:"turn"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Depth     int       `json:"depth"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Chain 记录单个回合内的交接
type Chain struct {
	mu       sync.Mutex
	turn     int
	maxDepth int
	records  []Handoff
	logger   *zap.Logger
}

// NewChain 创建回合交接链，maxDepth<0 视为 0
func NewChain(turn, maxDepth int, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Chain{
		turn:     turn,
		maxDepth: maxDepth,
		logger:   logger.With(zap.String("component", "handoff_chain"), zap.Int("turn", turn)),
	}
}

// Depth 返回已接受的交接次数
func (c *Chain) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depthLocked()
}

func (c *Chain) depthLocked() int {
	n := 0
	for _, h := range c.records {
		if h.Status != StatusRejected {
			n++
		}
	}
	return n
}

// Request 登记一次交接请求，深度未达上限时接受
func (c *Chain) Request(from, to string) (Handoff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	depth := c.depthLocked()
	h := Handoff{
		ID:        uuid.NewString(),
		Turn:      c.turn,
		From:      from,
		To:        to,
		Depth:     depth + 1,
		Status:    StatusAccepted,
		CreatedAt: time.Now(),
	}
	if depth >= c.maxDepth {
		h.Status = StatusRejected
		h.Depth = depth
		c.records = append(c.records, h)
		c.logger.Warn("handoff depth limit reached",
			zap.String("from", from),
			zap.String("to", to),
			zap.Int("max_depth", c.maxDepth))
		return h, false
	}

	// 上一跳在新交接发生时即视为完成
	for i := range c.records {
		if c.records[i].Status == StatusAccepted {
			c.records[i].Status = StatusCompleted
		}
	}
	c.records = append(c.records, h)
	c.logger.Info("handoff accepted",
		zap.String("id", h.ID),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("depth", h.Depth))
	return h, true
}

// Complete 回合结束时把仍处于 accepted 的交接标记为完成
func (c *Chain) Complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.records {
		if c.records[i].Status == StatusAccepted {
			c.records[i].Status = StatusCompleted
		}
	}
}

// Records 返回交接记录副本
func (c *Chain) Records() []Handoff {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Handoff(nil), c.records...)
}
