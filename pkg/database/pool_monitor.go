package database

import (
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// RegisterPoolMetrics 将连接池状态以 Gauge 形式暴露给 Prometheus，抓取时实时读取 sql.DBStats
func RegisterPoolMetrics(db *gorm.DB, reg prometheus.Registerer) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	gauges := map[string]struct {
		help string
		read func(sql.DBStats) float64
	}{
		"db_pool_open_connections": {"Open connections in the pool", func(s sql.DBStats) float64 { return float64(s.OpenConnections) }},
		"db_pool_in_use":           {"Connections currently in use", func(s sql.DBStats) float64 { return float64(s.InUse) }},
		"db_pool_idle":             {"Idle connections", func(s sql.DBStats) float64 { return float64(s.Idle) }},
		"db_pool_wait_count":       {"Total connections waited for", func(s sql.DBStats) float64 { return float64(s.WaitCount) }},
		"db_pool_wait_seconds":     {"Total time blocked waiting for a connection", func(s sql.DBStats) float64 { return s.WaitDuration.Seconds() }},
	}

	for name, g := range gauges {
		read := g.read
		collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: g.help}, func() float64 {
			return read(sqlDB.Stats())
		})
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}
