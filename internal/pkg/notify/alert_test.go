package notify

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"
	"topup_store/internal/pkg/config"
	"topup_store/internal/pkg/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMailAlerter(t *testing.T) {
	mailer, err := NewSMTPMailer(config.MailConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		From:     "noreply@example.com",
		FromName: "Top Up",
	})
	require.NoError(t, err)

	sent := make(chan string, 1)
	mailer.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		assert.Nil(t, a)
		assert.Equal(t, []string{"ops@example.com"}, to)
		sent <- string(msg)
		return nil
	}

	pool := worker.NewWorkerPool(1, 4, zap.NewNop(), nil)
	pool.Start()
	defer pool.Stop()

	NewMailAlerter(pool, mailer, "ops@example.com").Alert("Provision failed", "order 123")

	select {
	case msg := <-sent:
		assert.True(t, strings.Contains(msg, "Subject: Provision failed\r\n"))
		assert.True(t, strings.HasSuffix(msg, "order 123"))
	case <-time.After(time.Second):
		t.Fatal("alert mail was not sent")
	}
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := NewSMTPMailer(config.MailConfig{})
	assert.Error(t, err)
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	mailer, err := NewSMTPMailer(config.MailConfig{Host: "h", Port: "25", From: "a@b.c"})
	require.NoError(t, err)
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send should not be called")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mailer.Send(ctx, "x@y.z", "s", "b"), context.Canceled)
}
