// strikemesh is a CLI utility for analyzing weapon and hitbox meshes.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/strikemesh/internal/config"
	"github.com/Faultbox/strikemesh/internal/logger"
	"github.com/Faultbox/strikemesh/internal/metrics"
)

func main() {
	// Parse CLI flags first; the command follows the global flags
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Source != "" {
		logger.Info("config loaded", zap.String("path", cfg.Source))
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Metrics.Enabled {
		serveMetrics(cfg.Metrics.ListenAddr)
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "classify":
		err = cmdClassify(cfg, rest)
	case "mass":
		err = cmdMass(cfg, rest)
	case "nearest":
		err = cmdNearest(cfg, rest)
	case "swing":
		err = cmdSwing(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(os.Stderr, "Usage: strikemesh "+string(usage))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}

	if cfg.Metrics.Enabled {
		waitForSignal()
	}
}

func printUsage() {
	fmt.Println(`strikemesh - weapon mesh sharpness, mass and velocity analysis

Usage:
  strikemesh [global options] <command> [options]

Commands:
  classify <mesh>           Classify vertices as blunt, blade or spike
  mass <mesh>               Show the vertex mass distribution
  nearest <mesh> <x y z>    Find the triangle nearest to a local-space point
  swing <mesh>              Simulate a swing and analyze the leading impact

<mesh> is an OBJ file with vertex normals or one of: grid, cone, blade

Global options:
  -config <file>       Config file (default: ./strikemesh.yaml, then user config dir)
  -debug               Enable debug logging
  -log-file <file>     Also write JSON logs to a rotating file
  -workers <n>         Analysis goroutines
  -depth <n>           Classifier neighbor depth
  -attack-time <sec>   Velocity smoothing horizon
  -metrics-addr <addr> Serve Prometheus metrics and wait for Ctrl-C

Examples:
  strikemesh classify -v sword.obj
  strikemesh -depth 1 classify -noise 0.01 cone
  strikemesh mass -n 5 blade
  strikemesh nearest blade 0 1.05 0
  strikemesh swing -ticks 30 blade`)
}

// usageError carries the usage line of the failing command.
type usageError string

func (u usageError) Error() string {
	return "usage: " + string(u)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func waitForSignal() {
	logger.Info("analysis done, metrics still served; press Ctrl-C to exit")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
