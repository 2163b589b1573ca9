package smoke_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/fplcoach/internal/adapters/http/api"
	"github.com/okian/fplcoach/internal/adapters/repository"
	service "github.com/okian/fplcoach/internal/app"
	"github.com/okian/fplcoach/internal/smoke"
	"github.com/stretchr/testify/require"
)

func TestRun_AgainstService(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dir := filepath.Join(t.TempDir(), "data")
	config := &smoke.Config{
		DataDir:   dir,
		Players:   120,
		Teams:     10,
		Events:    2,
		Seed:      42,
		Formation: "4-4-2",
		Requests:  30,
		Workers:   4,
		Timeout:   5 * time.Second,
	}
	require.NoError(t, smoke.Run(ctx, config))

	svc := service.New(service.WithSource(repository.NewFileSource(dir)))
	require.NoError(t, svc.Start(ctx))
	defer svc.Stop()

	srv := httptest.NewServer(api.NewServer(svc).Handler())
	defer srv.Close()

	config.DataDir = ""
	config.BaseURL = srv.URL
	require.NoError(t, smoke.Run(ctx, config))
}

func TestRun_ServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := smoke.Run(context.Background(), &smoke.Config{BaseURL: srv.URL, Timeout: time.Second, Workers: 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}
