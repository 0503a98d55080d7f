package notify

import (
	"context"
	"topup_store/internal/pkg/worker"

	"go.uber.org/zap"
)

// Alerter 运营告警，调用方不关心结果
type Alerter interface {
	Alert(subject, body string)
}

// MailAlerter 通过 worker pool 异步发送告警邮件
type MailAlerter struct {
	pool   *worker.WorkerPool
	mailer Mailer
	to     string
}

func NewMailAlerter(pool *worker.WorkerPool, mailer Mailer, to string) *MailAlerter {
	return &MailAlerter{pool: pool, mailer: mailer, to: to}
}

func (a *MailAlerter) Alert(subject, body string) {
	a.pool.AddTask(worker.Task{
		Name: "alert: " + subject,
		Run: func(ctx context.Context) error {
			return a.mailer.Send(ctx, a.to, subject, body)
		},
	})
}

// LogAlerter 未配置邮件时的兜底实现，只写日志
type LogAlerter struct {
	log *zap.Logger
}

func NewLogAlerter(log *zap.Logger) *LogAlerter {
	return &LogAlerter{log: log}
}

func (a *LogAlerter) Alert(subject, body string) {
	a.log.Warn("operator alert", zap.String("subject", subject), zap.String("body", body))
}
