package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/pixel-inspector/internal/config"
	"github.com/ironsheep/pixel-inspector/internal/logging"
	"github.com/ironsheep/pixel-inspector/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := ""

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("pixel-inspector %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "--config", "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown argument: %s\n", args[i])
			os.Exit(2)
		}
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr (stdout is for MCP protocol)
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("starting pixel-inspector",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.Int("cache_capacity", cfg.Sampler.CacheCapacity))

	srv := server.New(server.WithConfig(cfg), server.WithLogger(logger))
	if err := srv.Run(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func printHelp() {
	fmt.Println("pixel-inspector - MCP server for pixel color sampling and panel placement")
	fmt.Println()
	fmt.Println("Usage: pixel-inspector [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH   Load settings from a YAML file")
	fmt.Println("  --version, -v       Print version information")
	fmt.Println("  --help, -h          Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug        Set the log level\n", config.EnvLogLevel)
	fmt.Printf("  %s=100     Pixel cache capacity\n", config.EnvCacheCapacity)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it as a stdio server in your MCP client.")
}
