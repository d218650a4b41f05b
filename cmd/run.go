package cmd

import (
	"bufio"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/encodeous/ripsim/core"
	"github.com/encodeous/ripsim/state"
	"github.com/encodeous/ripsim/telemetry"
	"github.com/spf13/cobra"
)

// setupDebugging serves expvar, pprof and /debug/metrics on the default mux.
func setupDebugging(addr string) {
	if addr == "" {
		return
	}
	go func() {
		log.Println(http.ListenAndServe(addr, nil))
	}()
}

func applyFlags(cmd *cobra.Command, cfg *state.SimCfg) {
	flags := cmd.Flags()
	if flags.Changed("routers") {
		cfg.Routers, _ = flags.GetInt("routers")
	}
	if flags.Changed("topology") {
		cfg.Topology, _ = flags.GetString("topology")
	}
	if flags.Changed("base-port") {
		cfg.BasePort, _ = flags.GetUint16("base-port")
	}
	if flags.Changed("log") {
		cfg.LogPath, _ = flags.GetString("log")
	}
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation with an interactive command loop",
	Long: `Creates the routers, links them by the topology and starts them one after another.
Commands are then read from stdin: start N, stop N, print N, neigh N, trace N <ip>, watch N, quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)

		logs := core.LogCfg{Level: slog.LevelInfo, Console: os.Stderr}
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			logs.Level = slog.LevelDebug
		}
		if cfg.LogPath != "" {
			f, err := core.OpenLogFile(cfg.LogPath)
			if err != nil {
				return err
			}
			defer f.Close()
			logs.File = f
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		sim, err := core.NewSimulation(*cfg, logs)
		if err != nil {
			return err
		}
		defer sim.Close()

		debugAddr, _ := cmd.Flags().GetString("debug-addr")
		setupDebugging(debugAddr)

		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			exp, err := telemetry.NewExporter(addr, telemetry.NewCollector(sim.Registry.Routers), logs.Logger("metrics"))
			if err != nil {
				return err
			}
			go exp.Run(ctx)
		}

		err = sim.StartAll(ctx)
		if err != nil {
			return err
		}
		sh := newShell(sim, cmd.OutOrStdout())
		defer sh.Close()
		return sh.Run(ctx, bufio.NewScanner(cmd.InOrStdin()))
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output, logs every route event")
	runCmd.Flags().IntP("routers", "r", state.DefaultRouters, "number of routers to create")
	runCmd.Flags().StringP("topology", "t", state.DefaultTopology, "links between routers, e.g. \"1-2, 2-3\"")
	runCmd.Flags().Uint16P("base-port", "p", state.DefaultBasePort, "port of the first router")
	runCmd.Flags().StringP("log", "l", "", "also write logs to this file")
	runCmd.Flags().String("debug-addr", "", "serve expvar, pprof and /debug/metrics on this address")
	runCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
}
