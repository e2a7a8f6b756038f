package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"goldpredict/config"
	"goldpredict/monitoring"
)

func TestServerServeAndStop(t *testing.T) {
	server, err := NewServer(config.Default().HTTP, readyInit(t, &fakeModel{}), monitoring.NewMetrics(), zap.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	served := make(chan error, 1)
	go func() { served <- server.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != `{"status":"ok"}` {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("middleware chain not applied")
	}

	if err := server.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("serve returned %v after stop", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return after stop")
	}
}

func TestServerStartReportsListenError(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	cfg := config.Default().HTTP
	cfg.Port = l.Addr().(*net.TCPAddr).Port
	server, err := NewServer(cfg, readyInit(t, &fakeModel{}), monitoring.NewMetrics(), nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := server.Start(); err == nil || !strings.HasPrefix(err.Error(), "listen ") {
		t.Fatalf("expected a listen error, got %v", err)
	}
}
