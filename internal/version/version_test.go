package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, status int, body string) *Checker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &Checker{URL: srv.URL, Client: srv.Client()}
}

func TestCheck(t *testing.T) {
	c := releaseServer(t, http.StatusOK, `{"tag_name":"v1.4.0"}`)

	tests := []struct {
		current  string
		outdated bool
	}{
		{"v1.3.9", true},
		{"v1.4.0", false},
		{"v2.0.0", false},
		{"dev", false},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			u, err := c.Check(context.Background(), tt.current)
			require.NoError(t, err)
			assert.Equal(t, "v1.4.0", u.Latest)
			assert.Equal(t, tt.outdated, u.Outdated)
		})
	}
}

func TestCheck_Errors(t *testing.T) {
	_, err := releaseServer(t, http.StatusNotFound, `{}`).Check(context.Background(), "v1.0.0")
	assert.Error(t, err)

	_, err = releaseServer(t, http.StatusOK, `{"tag_name":"latest-and-greatest"}`).Check(context.Background(), "v1.0.0")
	assert.ErrorContains(t, err, "parse release tag")
}
