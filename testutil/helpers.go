package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// CancelledContext 返回已取消的上下文，用于验证各组件在取消后的行为
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// WriteFile 在测试临时目录写入配置或角色文件并返回路径
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
