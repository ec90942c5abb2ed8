package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BaSui01/policyswarm/config"
)

// Dialector 按驱动名选择 GORM 方言，DSN 由 config.DatabaseConfig 拼接
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	dsn := cfg.DSN()
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "":
		return nil, fmt.Errorf("database driver not configured")
	}
	return nil, fmt.Errorf("unsupported database driver %q (supported: postgres, mysql, sqlite)", cfg.Driver)
}

// Open 连接数据库。GORM 自身的 SQL 日志关闭，连接事件走 zap。
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	logger.Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}
