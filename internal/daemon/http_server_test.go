package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	"git.home.luguber.info/inful/wallhelper/internal/metrics"
	"git.home.luguber.info/inful/wallhelper/internal/rotation"
)

func TestHTTPServer_Endpoints(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncTick(metrics.OutcomeApplied)

	tracker := NewStatusTracker(clockwork.NewFakeClock(), 4)
	tracker.Observe(rotation.State{LastApplied: "/w/a.jpg"}, rotation.Result{
		Outcome: metrics.OutcomeApplied,
		Daypart: daypart.Day,
	})

	srv := httptest.NewServer(NewHTTPServer("", reg, tracker).Handler())
	defer srv.Close()

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("status", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var snap StatusSnapshot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
		assert.Equal(t, "day", snap.Daypart)
		assert.Equal(t, "/w/a.jpg", snap.LastApplied)
		assert.Equal(t, 4, snap.Images)
	})

	t.Run("health reflects lifecycle", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		tracker.SetStatus(StatusRunning)
		resp, err = http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestHTTPServer_StartBindFailure(t *testing.T) {
	first := NewHTTPServer("127.0.0.1:0", prom.NewRegistry(), NewStatusTracker(nil, 0))
	require.NoError(t, first.Start(t.Context()))
	t.Cleanup(func() { _ = first.Stop(t.Context()) })

	second := NewHTTPServer(first.Addr(), prom.NewRegistry(), NewStatusTracker(nil, 0))
	require.Error(t, second.Start(t.Context()))
}
