package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/display"
	"github.com/ironsheep/image-edit-mcp/internal/editor"
	"github.com/ironsheep/image-edit-mcp/internal/gemini"
	"github.com/ironsheep/image-edit-mcp/internal/logging"
	"github.com/ironsheep/image-edit-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := ""

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("image-edit-mcp %s\n", Version)
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
			fmt.Fprintf(os.Stderr, "unknown option: %s\n", args[i])
			os.Exit(2)
		}
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "image-edit-mcp: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("image-edit-mcp - MCP server for AI photo editing")
	fmt.Println()
	fmt.Println("Usage: image-edit-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH  Read configuration from PATH (default ./image-edit.toml)")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  GEMINI_API_KEY                 Gemini API key (also IMAGE_EDIT_GEMINI_API_KEY, API_KEY)")
	fmt.Println("  IMAGE_EDIT_GEMINI_MODEL        Image model name")
	fmt.Println("  IMAGE_EDIT_DISPLAY_ADDR        Artifact listener address, \"off\" to disable")
	fmt.Println("  IMAGE_EDIT_LOG_LEVEL=debug     Enable debug logging")
	fmt.Println("  IMAGE_EDIT_ENV                 Selects the image-edit.<env>.toml overlay")
	fmt.Println()
	fmt.Println("A .env file in the working directory is loaded first.")
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
}

func run(configPath string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	// stdout is for MCP protocol
	logger := logging.New(&cfg.Logging, os.Stderr)
	logger.Info("starting image-edit-mcp",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var svc editor.Service
	if cfg.Gemini.HasAPIKey() {
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("gemini client: %w", err)
		}
		svc = client
		logger.Info("edit service ready", "model", client.Model())
	} else {
		logger.Warn("no API key configured, generative edits will fail; crop and history still work")
	}

	baseURL := ""
	if cfg.Display.Enabled() {
		baseURL = cfg.Display.BaseURL
	}
	registry := display.NewRegistry(baseURL, logger)
	binder := display.NewBinder(registry)
	defer binder.Close()

	session := editor.New(svc,
		editor.WithLogger(logger),
		editor.WithTimeout(cfg.Gemini.TimeoutDuration()),
		editor.WithObserver(binder.Bind),
	)

	srv := server.New(server.Config{
		Session:       session,
		Binder:        binder,
		MaxUploadSize: cfg.Limits.MaxUploadSizeBytes(),
		Logger:        logger,
		Version:       Version,
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Display.Enabled() {
		httpSrv := &http.Server{
			Addr:              cfg.Display.Addr,
			Handler:           registry.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return gctx },
		}

		g.Go(func() error {
			logger.Info("serving artifacts", "addr", cfg.Display.Addr, "base_url", baseURL)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("artifact listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		// stdin closing ends the session; stop the listener with it.
		defer stop()
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
