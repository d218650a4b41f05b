package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func portLabel(port uint16) string {
	return strconv.Itoa(int(port))
}

type Exporter struct {
	addr string
	reg  *prometheus.Registry
	log  *slog.Logger
}

func NewExporter(addr string, collector prometheus.Collector, log *slog.Logger) (*Exporter, error) {
	obj := Exporter{
		addr: addr,
		reg:  prometheus.NewRegistry(),
		log:  log,
	}

	err := obj.reg.Register(collector)
	if err != nil {
		return nil, err
	}

	return &obj, nil
}

func (obj *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(obj.reg, promhttp.HandlerOpts{})
}

// Run serves /metrics until ctx is done.
func (obj *Exporter) Run(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obj.Handler())

	srv := http.Server{
		Addr:         obj.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	obj.log.Debug("metrics exporter starting", "addr", obj.addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		obj.log.Error("metrics exporter failed", "error", err)
	}
}
