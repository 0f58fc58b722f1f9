package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.DatabaseDSN = ""
	c.BcryptCost = 4
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_InMemory(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.NoError(t, app.Ping(context.Background()))
	assert.Empty(t, app.closers)
}

func TestNewApp_UnknownLogBackend(t *testing.T) {
	c := memoryConfig()
	c.LogBackend = "log4j"
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "unknown log backend")
}

func TestNewApp_UnknownLogLevel(t *testing.T) {
	c := memoryConfig()
	c.LogLevel = "chatty"
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "unknown log level")
}

func TestNewLogger_Zap(t *testing.T) {
	l, err := newLogger("zap", "warn")
	require.NoError(t, err)
	_, ok := l.(*logging.ZapLogger)
	assert.True(t, ok)
}

func TestWarnInsecureDefaults(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		warns  int
	}{
		{"default secret", config.DefaultSecretKey, 1},
		{"custom secret", "s3cr3t-from-env", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			c := memoryConfig()
			c.SecretKey = tt.secret
			app := &App{config: c, logger: logging.NewZapLogger(zap.New(core))}

			app.warnInsecureDefaults(context.Background())

			entries := logs.FilterMessageSnippet("JWT secret").AllUntimed()
			assert.Len(t, entries, tt.warns)
		})
	}
}

func TestNewApp_BadDSN(t *testing.T) {
	c := memoryConfig()
	c.DatabaseDSN = "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "db init error")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	app.logger = logging.Nop{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
