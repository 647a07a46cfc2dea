// Package cmd implements the command-line surface: a single root command
// with the capture/daemonization flag set.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skyseer/wifibeat/internal/beat"
	"github.com/skyseer/wifibeat/internal/config"
	"github.com/skyseer/wifibeat/internal/log"
	"github.com/skyseer/wifibeat/internal/topology"
)

var (
	configPath string
	noDaemon   bool
	dumpConfig bool
	pidPath    string
	noPID      bool
	pcapPrefix string
)

var rootCmd = &cobra.Command{
	Use:           "wifibeat",
	Short:         "Capture 802.11 frames, parse them, and ship them to Elasticsearch",
	Version:       beat.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	// Declaring the version flag ourselves gives it the -v shorthand;
	// cobra's built-in handling still prints Version and exits 0.
	rootCmd.Flags().BoolP("version", "v", false, "print the version and exit")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "/etc/wifibeat.yml", "settings file path")
	rootCmd.Flags().BoolVarP(&noDaemon, "no-daemon", "f", false, "run in foreground and skip the PID file")
	rootCmd.Flags().BoolVarP(&dumpConfig, "dump-config", "d", false, "parse and print the configuration, then exit")
	rootCmd.Flags().StringVarP(&pidPath, "pid", "p", defaultPIDPath, "PID file path (ignored with --no-daemon)")
	rootCmd.Flags().BoolVarP(&noPID, "no-pid", "n", false, "do not write a PID file")
	rootCmd.Flags().StringVarP(&pcapPrefix, "pcap-prefix", "a", "", "override wifibeat.output.pcap.prefix")
}

// Execute runs the root command. Any error is fatal: main exits 1.
func Execute() error {
	return rootCmd.Execute()
}

func run(cmd *cobra.Command) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	settings.ApplyPCAPPrefixOverride(pcapPrefix)

	if dumpConfig {
		out, err := config.Dump(settings)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	if !noDaemon && !inDaemonChild() {
		return daemonize()
	}

	if err := log.Init(settings.Logging.Level, settings.Logging.File, noDaemon); err != nil {
		return err
	}

	if !noDaemon && !noPID {
		if err := writePIDFile(pidPath); err != nil {
			return err
		}
		defer removePIDFile(pidPath)
	}

	return runPipeline(settings)
}

// runPipeline builds, initializes, and starts the topology, then supervises
// it until a termination signal arrives or every source has finished.
func runPipeline(settings *config.Settings) error {
	env := beat.New()
	t, err := topology.Build(settings, env, topology.Options{Log: slog.Default()})
	if err != nil {
		slog.Error("building topology", "error", err)
		return err
	}
	if err := t.Init(); err != nil {
		slog.Error("initializing topology", "error", err)
		t.Kill(time.Second)
		return err
	}
	if err := t.Start(); err != nil {
		slog.Error("starting topology", "error", err)
		t.Stop()
		t.Kill(time.Second)
		return err
	}
	slog.Info("pipeline running", "version", beat.Version, "hostname", env.Hostname)

	// Workers never observe these signals themselves; the supervisor is
	// the only termination handler.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case sig := <-sigs:
			slog.Info("shutting down", "signal", sig.String())
			t.Stop()
			t.Kill(time.Second)
			return nil
		case <-ticker.C:
			if t.CanStop() {
				slog.Info("all sources finished, shutting down")
				t.Stop()
				t.Kill(time.Second)
				return nil
			}
		}
	}
}
