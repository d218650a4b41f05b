package telemetry

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/encodeous/ripsim/core"
	"github.com/encodeous/ripsim/state"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, n int) *core.Registry {
	cfg := state.DefaultSimCfg()
	g := core.NewRegistry(cfg, func(string) *slog.Logger {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	})
	t.Cleanup(func() { _ = g.Close() })
	for i := 0; i < n; i++ {
		_, err := g.CreateInstance()
		require.NoError(t, err)
	}
	return g
}

func TestCollector(t *testing.T) {
	g := newRegistry(t, 2)
	r := g.Routers()[0]
	r.Table.Add(state.RouteEntry{Destination: state.MustParseIP("10.0.0.2"), Gateway: r.Id, Cost: 0})
	r.Table.Add(state.RouteEntry{Destination: state.MustParseIP("10.0.0.3"), Gateway: r.Id, Cost: state.INF})

	c := NewCollector(g.Routers)
	assert.Equal(t, 8, testutil.CollectAndCount(c))
	assert.Equal(t, 2, testutil.CollectAndCount(c, "ripsim_routes"))

	expected := `
# HELP ripsim_unreachable_routes Routes held at the unreachable metric, waiting to be removed
# TYPE ripsim_unreachable_routes gauge
ripsim_unreachable_routes{port="8080",router="192.168.0.1"} 1
ripsim_unreachable_routes{port="8081",router="192.168.0.2"} 0
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "ripsim_unreachable_routes"))
}

func TestExporterHandler(t *testing.T) {
	g := newRegistry(t, 1)
	exp, err := NewExporter("127.0.0.1:0", NewCollector(g.Routers), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `ripsim_router_running{port="8080",router="192.168.0.1"} 0`)
}
