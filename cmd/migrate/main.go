package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"topup_store/internal/pkg/config"
	"topup_store/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("path", "migrations", "migration files directory")
	down := flag.Int("down", 0, "roll back N steps instead of migrating up")
	force := flag.Int("force", -1, "force version (clears the dirty flag)")
	flag.Parse()

	if err := config.LoadConfig(); err != nil {
		panic(err)
	}
	cfg := config.GlobalConfig
	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	db := cfg.Database
	dsn := fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s",
		url.UserPassword(db.User, db.Password).String(), db.Host, db.Port, db.DBName, db.SSLMode)

	m, err := migrate.New("file://"+*dir, dsn)
	if err != nil {
		log.Fatal("open migrations failed", zap.Error(err))
	}
	defer m.Close()

	switch {
	case *force >= 0:
		err = m.Force(*force)
	case *down > 0:
		err = m.Steps(-*down)
	default:
		err = m.Up()
		// 上次迁移中断时数据库处于 dirty 状态，回退到出错前的版本再重试
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Warn("database is dirty, forcing previous version", zap.Int("version", dirty.Version))
			if err = m.Force(dirty.Version - 1); err == nil {
				err = m.Up()
			}
		}
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("migration failed", zap.Error(err))
	}

	version, dirty, _ := m.Version()
	log.Info("migration finished", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
