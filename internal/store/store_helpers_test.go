package store

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"lab-notebook-client/internal/client"
	"lab-notebook-client/internal/pkg/logger"
)

// newStoreAPI backs a store with a real API client against a test
// server. The CSRF handshake is wired here; tests register only their
// domain routes on the mux.
func newStoreAPI(t *testing.T, mux *http.ServeMux) client.IAPIClient {
	t.Helper()

	mux.HandleFunc("/api/auth/csrf/restore", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"csrf_token":"tok-1"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api, err := client.New(client.Options{BaseURL: srv.URL, Logger: logger.NewNopLogger()})
	require.NoError(t, err)
	return api
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}
