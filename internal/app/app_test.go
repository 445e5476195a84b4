package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edkuperman/cronzimus/internal/config"
	"github.com/edkuperman/cronzimus/internal/db"
)

func offlineDB(context.Context, db.Config, zerolog.Logger) (*db.Database, error) {
	return db.New(nil), nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.HTTP.ShutdownTimeout = 2 * time.Second
	cfg.Scheduler.StopTimeout = 2 * time.Second
	return cfg
}

func TestRun_ServesAndShutsDownCleanly(t *testing.T) {
	addrCh := make(chan string, 1)
	a := New(testConfig(), zerolog.New(zerolog.NewTestWriter(t)),
		WithConnector(offlineDB),
		WithReady(func(addr string) { addrCh <- addr }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	resp, err := http.Get("http://" + addr + "/api/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"running"}`, string(body))

	resp, err = http.Get("http://" + addr + "/api/scheduler")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"running":true,"jobs":1}`, string(body))

	resp, err = http.Get("http://" + addr + "/api/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_DatabaseFailure(t *testing.T) {
	boom := errors.New("boom")
	a := New(testConfig(), zerolog.Nop(), WithConnector(
		func(context.Context, db.Config, zerolog.Logger) (*db.Database, error) { return nil, boom },
	))

	err := a.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.HTTP.Addr = ln.Addr().String()

	err = New(cfg, zerolog.Nop(), WithConnector(offlineDB)).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}
