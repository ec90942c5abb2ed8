package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BaSui01/policyswarm/config"
)

func setupTestDB(t *testing.T) (sqlmock.Sqlmock, *gorm.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	return mock, gormDB
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls int
	name  string
	open  int
	idle  int
}

func (r *fakeRecorder) RecordDBConnections(database string, open, idle int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.name, r.open, r.idle = database, open, idle
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testPoolConfig() PoolConfig {
	return PoolConfig{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour}
}

func TestNewPool(t *testing.T) {
	mock, gormDB := setupTestDB(t)

	pool, err := NewPool(gormDB, "summaries", testPoolConfig(), nil, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, gormDB, pool.DB())
	assert.Equal(t, 10, pool.Stats().MaxOpenConnections)

	mock.ExpectClose()
	require.NoError(t, pool.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPool_Invalid(t *testing.T) {
	_, err := NewPool(nil, "x", testPoolConfig(), nil, nil)
	assert.Error(t, err)

	_, gormDB := setupTestDB(t)
	_, err = NewPool(gormDB, "x", PoolConfig{MaxOpenConns: 1, MaxIdleConns: 2}, nil, nil)
	assert.Error(t, err)
}

func TestPool_Ping(t *testing.T) {
	mock, gormDB := setupTestDB(t)

	pool, err := NewPool(gormDB, "summaries", testPoolConfig(), nil, nil)
	require.NoError(t, err)

	require.NoError(t, pool.Ping(context.Background()))

	mock.ExpectClose()
	require.NoError(t, pool.Close())

	assert.ErrorIs(t, pool.Ping(context.Background()), ErrPoolClosed)
}

func TestPool_CloseIsIdempotent(t *testing.T) {
	mock, gormDB := setupTestDB(t)

	pool, err := NewPool(gormDB, "summaries", testPoolConfig(), nil, nil)
	require.NoError(t, err)

	mock.ExpectClose()
	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPool_Report(t *testing.T) {
	mock, gormDB := setupTestDB(t)
	rec := &fakeRecorder{}

	pool, err := NewPool(gormDB, "summaries", testPoolConfig(), rec, nil)
	require.NoError(t, err)

	pool.Report()

	stats := pool.Stats()
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "summaries", rec.name)
	assert.Equal(t, stats.OpenConnections, rec.open)
	assert.Equal(t, stats.Idle, rec.idle)

	mock.ExpectClose()
	require.NoError(t, pool.Close())
}

func TestPool_ReportWithoutRecorder(t *testing.T) {
	mock, gormDB := setupTestDB(t)

	pool, err := NewPool(gormDB, "summaries", testPoolConfig(), nil, nil)
	require.NoError(t, err)

	assert.NotPanics(t, pool.Report)

	mock.ExpectClose()
	require.NoError(t, pool.Close())
}

func TestPool_WatchReports(t *testing.T) {
	mock, gormDB := setupTestDB(t)
	rec := &fakeRecorder{}

	cfg := testPoolConfig()
	cfg.WatchInterval = 10 * time.Millisecond

	pool, err := NewPool(gormDB, "summaries", cfg, rec, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, 5*time.Millisecond)

	mock.ExpectClose()
	require.NoError(t, pool.Close())

	// 关闭后不再上报
	n := rec.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, rec.count())
}

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PoolConfig
		wantErr bool
	}{
		{"valid config", PoolConfig{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour}, false},
		{"default config", DefaultPoolConfig(), false},
		{"invalid max open conns", PoolConfig{MaxOpenConns: 0, MaxIdleConns: 5}, true},
		{"invalid max idle conns", PoolConfig{MaxOpenConns: 10, MaxIdleConns: 0}, true},
		{"idle > open", PoolConfig{MaxOpenConns: 5, MaxIdleConns: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPoolConfigFrom(t *testing.T) {
	pc := PoolConfigFrom(config.DatabaseConfig{MaxOpenConns: 20, MaxIdleConns: 4, ConnMaxLifetime: time.Minute})
	assert.Equal(t, 20, pc.MaxOpenConns)
	assert.Equal(t, 4, pc.MaxIdleConns)
	assert.Equal(t, time.Minute, pc.ConnMaxLifetime)

	assert.Equal(t, DefaultPoolConfig(), PoolConfigFrom(config.DatabaseConfig{}))
}

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{"postgres", "postgres", false},
		{"mysql", "mysql", false},
		{"sqlite", "sqlite", false},
		{"", "", true},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(config.DatabaseConfig{Driver: tt.driver, Name: "x"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"}, nil)
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}
