package server

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/audit"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = "memory"
	c.SecretKey = "k"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	return c
}

func TestNewApp_MemoryStore(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &repomanager.MemoryRepositoryManager{}, app.repos)
}

func TestNewApp_LogsSessionSettings(t *testing.T) {
	var buf bytes.Buffer
	c := memoryConfig()
	c.AccessTokenValidityDuration = 90 * time.Second
	c.RotateRefreshToken = true

	_, err := NewApp(context.Background(), c, logging.NewJSON(&buf, "info"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"access_token_ttl":"1m30s"`)
	assert.Contains(t, out, `"rotate_refresh_token":true`)
	assert.Contains(t, out, `"memory_store":true`)
}

func TestNewApp_MissingSecret(t *testing.T) {
	c := memoryConfig()
	c.SecretKey = ""

	_, err := NewApp(context.Background(), c, logging.Nop{})
	assert.ErrorIs(t, err, common.ErrMissingSecret)
}

func TestNewApp_PostgresOpenError(t *testing.T) {
	orig := openPostgres
	openPostgres = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
		return nil, errors.New("refused")
	}
	defer func() { openPostgres = orig }()

	c := memoryConfig()
	c.DatabaseDSN = "postgres://nowhere"

	_, err := NewApp(context.Background(), c, logging.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewAuditSink_DefaultsToLog(t *testing.T) {
	sink, err := newAuditSink(context.Background(), memoryConfig(), logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &audit.LogSink{}, sink)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
