package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPServer_CancelReachesRequests(t *testing.T) {
	started := make(chan struct{})
	observed := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
			observed <- r.Context().Err()
		case <-time.After(5 * time.Second):
			observed <- nil
		}
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := newHTTPServer(baseCtx, ln.Addr().String(), handler)
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/lpr/run-ocr")
		if err == nil {
			resp.Body.Close()
		}
	}()

	<-started
	cancel()

	select {
	case err := <-observed:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("request context was not cancelled")
	}
}
