package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BaSui01/policyswarm/internal/tlsutil"
	"github.com/BaSui01/policyswarm/types"
	"github.com/redis/go-redis/v9"
)

// RedisSummaryLog is a Redis-based implementation of SummaryLog.
// 每条摘要保存为 JSON 字符串，另用列表记录追加顺序（全局一份，每个运行一份）。
type RedisSummaryLog struct {
	client     *redis.Client
	keyPrefix  string
	ownsClient bool
}

// NewRedisSummaryLog creates a Redis summary log and checks the connection
func NewRedisSummaryLog(config StoreConfig) (*RedisSummaryLog, error) {
	rc := config.Redis
	timeout := rc.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        rc.Addr,
		Password:    rc.Password,
		DB:          rc.DB,
		PoolSize:    rc.PoolSize,
		DialTimeout: timeout,
		TLSConfig:   tlsutil.RedisConfig(rc.TLS, rc.Addr),
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s := NewRedisSummaryLogWithClient(client, rc.KeyPrefix)
	s.ownsClient = true
	return s, nil
}

// NewRedisSummaryLogWithClient 使用已有客户端，Close 不会关闭该客户端
func NewRedisSummaryLogWithClient(client *redis.Client, keyPrefix string) *RedisSummaryLog {
	if keyPrefix == "" {
		keyPrefix = "policyswarm:"
	}
	return &RedisSummaryLog{
		client:    client,
		keyPrefix: keyPrefix + "summary:",
	}
}

func (s *RedisSummaryLog) dataKey(id string) string { return s.keyPrefix + "data:" + id }

func (s *RedisSummaryLog) allKey() string { return s.keyPrefix + "all" }

func (s *RedisSummaryLog) runKey(runID string) string { return s.keyPrefix + "run:" + runID }

// Append implements SummaryLog
func (s *RedisSummaryLog) Append(ctx context.Context, sum types.Summary) error {
	sum, err := normalize(sum)
	if err != nil {
		return err
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.dataKey(sum.ID), data, 0)
	pipe.RPush(ctx, s.allKey(), sum.ID)
	if sum.RunID != "" {
		pipe.RPush(ctx, s.runKey(sum.RunID), sum.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// List implements SummaryLog
func (s *RedisSummaryLog) List(ctx context.Context, q Query) ([]types.Summary, error) {
	listKey := s.allKey()
	if q.RunID != "" {
		listKey = s.runKey(q.RunID)
	}
	ids, err := s.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []types.Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.dataKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]types.Summary, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var sum types.Summary
		if err := json.Unmarshal([]byte(str), &sum); err != nil {
			return nil, fmt.Errorf("corrupt summary record: %w", err)
		}
		if q.match(sum) {
			out = append(out, sum)
		}
	}
	return out, nil
}

// Close closes the store
func (s *RedisSummaryLog) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}

// Ping checks if the store is healthy
func (s *RedisSummaryLog) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
