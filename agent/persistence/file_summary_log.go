package persistence

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BaSui01/policyswarm/types"
)

const indexFileName = "summaries.jsonl"

// FileSummaryLog 追加写入 summary.txt 与 summaries.jsonl
type FileSummaryLog struct {
	mu        sync.Mutex
	textPath  string
	indexPath string
	closed    bool
}

// NewFileSummaryLog creates a new file-based summary log
func NewFileSummaryLog(config StoreConfig) (*FileSummaryLog, error) {
	baseDir := config.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create summary log directory: %w", err)
	}
	name := config.FileName
	if name == "" {
		name = "summary.txt"
	}
	return &FileSummaryLog{
		textPath:  filepath.Join(baseDir, name),
		indexPath: filepath.Join(baseDir, indexFileName),
	}, nil
}

// TextPath 返回人类可读日志的路径
func (s *FileSummaryLog) TextPath() string { return s.textPath }

// Append implements SummaryLog
func (s *FileSummaryLog) Append(_ context.Context, sum types.Summary) error {
	sum, err := normalize(sum)
	if err != nil {
		return err
	}
	line, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if err := appendFile(s.textPath, "\n"+sum.Header()+"\n"+sum.Text+"\n"); err != nil {
		return err
	}
	return appendFile(s.indexPath, string(line)+"\n")
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// List implements SummaryLog
func (s *FileSummaryLog) List(_ context.Context, q Query) ([]types.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	f, err := os.Open(s.indexPath)
	if os.IsNotExist(err) {
		return []types.Summary{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []types.Summary{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var sum types.Summary
		if err := json.Unmarshal(scanner.Bytes(), &sum); err != nil {
			return nil, fmt.Errorf("corrupt summary index: %w", err)
		}
		if q.match(sum) {
			out = append(out, sum)
		}
	}
	return out, scanner.Err()
}

// Close closes the store
func (s *FileSummaryLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ping checks if the store is healthy
func (s *FileSummaryLog) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	_, err := os.Stat(filepath.Dir(s.textPath))
	return err
}
