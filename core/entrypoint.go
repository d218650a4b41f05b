package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"reflect"
	"runtime"
	"time"

	"github.com/encodeous/ripsim/perf"
	"github.com/encodeous/ripsim/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// LogCfg builds one logger per router, all sharing the same sinks.
type LogCfg struct {
	Level   slog.Level
	Console io.Writer
	File    io.Writer
}

func (c LogCfg) Logger(prefix string) *slog.Logger {
	console := c.Console
	if console == nil {
		console = os.Stderr
	}
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(console, &tint.Options{
			Level:        c.Level,
			AddSource:    false,
			CustomPrefix: prefix,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))
	if c.File != nil {
		handlers = append(handlers,
			slog.NewTextHandler(c.File, &slog.HandlerOptions{Level: c.Level}).
				WithAttrs([]slog.Attr{slog.String("router", prefix)}))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// OpenLogFile opens logPath for appending, creating its directory.
func OpenLogFile(logPath string) (*os.File, error) {
	err := os.MkdirAll(path.Dir(logPath), 0700)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
}

// MainLoop executes dispatched functions one at a time until the run is cancelled.
func MainLoop(s *state.State, dispatch <-chan func(*state.State) error) {
	s.Log.Debug("started dispatch loop")
	for {
		select {
		case fun := <-dispatch:
			start := time.Now()
			err := fun(s)
			if err != nil {
				s.Log.Error("error occurred during dispatch", "error", err)
			}
			elapsed := time.Since(start)
			perf.DispatchLatency.Add(float64(elapsed.Microseconds()))
			if elapsed > time.Millisecond*50 {
				s.Log.Warn("dispatch took a long time!", "fun", runtime.FuncForPC(reflect.ValueOf(fun).Pointer()).Name(), "elapsed", elapsed, "len", len(dispatch))
			}
		case <-s.Context.Done():
			s.Log.Debug("stopped dispatch loop", "reason", context.Cause(s.Context).Error())
			return
		}
	}
}
