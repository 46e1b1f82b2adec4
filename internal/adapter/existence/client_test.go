package existence

import (
	"context"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		TrainerBaseURL: srv.URL + "/api/entrenadores/",
		TeamBaseURL:    srv.URL + "/api/equipos",
		MemberBaseURL:  srv.URL + "/api/miembros",
		Timeout:        timeout,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExistsBuildsURLPerKind(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"existe": true}`)
	}, time.Second)

	ctx := context.Background()
	ok, err := client.TrainerExists(ctx, "E1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.TeamExists(ctx, "T 1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.MemberExists(ctx, "M1")
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, []string{
		"GET /api/entrenadores/E1/existe",
		"GET /api/equipos/T%201/existe",
		"GET /api/miembros/M1/existe",
	}, paths)
}

func TestExistsInterpretsBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"existe true", `{"existe": true}`, true},
		{"existe false", `{"existe": false}`, false},
		{"exists true", `{"exists": true}`, true},
		{"null flag", `{"existe": null}`, false},
		{"missing flag", `{"id": "E1"}`, false},
		{"null body", `null`, false},
		{"empty body", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}, time.Second)

			ok, err := client.TrainerExists(context.Background(), "E1")
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestExistsUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"existe": tru`)
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler, 50*time.Millisecond)

			_, err := client.MemberExists(context.Background(), "M1")
			require.ErrorIs(t, err, ErrServiceUnavailable)
			require.ErrorIs(t, err, domain.ErrDependencyUnavailable)
			require.NotErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestExistsConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClient(Config{TrainerBaseURL: base, TeamBaseURL: base, MemberBaseURL: base, Timeout: time.Second}, nil)

	_, err := client.TeamExists(context.Background(), "T1")
	require.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestExistsUnknownKind(t *testing.T) {
	client := NewClient(Config{}, nil)

	_, err := client.Exists(context.Background(), Kind("coach"), "1")
	require.ErrorIs(t, err, ErrUnknownKind)
}
