package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/handwrite-mcp/internal/config"
	"github.com/ironsheep/handwrite-mcp/internal/credential"
	"github.com/ironsheep/handwrite-mcp/internal/imaging"
	"github.com/ironsheep/handwrite-mcp/internal/logging"
	"github.com/ironsheep/handwrite-mcp/internal/notes"
	"github.com/ironsheep/handwrite-mcp/internal/recognize"
	"github.com/ironsheep/handwrite-mcp/internal/server"
	"github.com/ironsheep/handwrite-mcp/internal/session"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("handwrite-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("handwrite-mcp", flag.ExitOnError)
	envFile := fs.String("env-file", "", "dotenv file to load")
	backend := fs.String("backend", "", "recognition backend: huggingface or tesseract")
	fs.Parse(os.Args[1:])

	if err := run(config.LoadOptions{EnvFile: *envFile, BackendOverride: *backend}); err != nil {
		fmt.Fprintf(os.Stderr, "handwrite-mcp: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("handwrite-mcp - MCP server for transcribing handwritten notes")
	fmt.Println()
	fmt.Println("Usage: handwrite-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v       Print version information")
	fmt.Println("  --help, -h          Print this help message")
	fmt.Println("  --env-file PATH     Load settings from a dotenv file")
	fmt.Println("  --backend NAME      huggingface (default) or tesseract")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  HANDWRITE_BACKEND=huggingface|tesseract")
	fmt.Println("  HANDWRITE_API_KEY=hf_...          Seeds the saved API key")
	fmt.Println("  HANDWRITE_MODEL_URL=URL           Recognition endpoint")
	fmt.Println("  HANDWRITE_CREDENTIAL_FILE=PATH    Where the API key is saved")
	fmt.Println("  HANDWRITE_REQUEST_TIMEOUT_SEC=60")
	fmt.Println("  HANDWRITE_PADDING=10")
	fmt.Println("  HANDWRITE_CONTAINER_WIDTH=800")
	fmt.Println("  HANDWRITE_MAX_UPLOAD_MB=10")
	fmt.Println("  HANDWRITE_TESSERACT_LANG=eng")
	fmt.Println("  HANDWRITE_LOG_LEVEL=debug         Enable debug logging")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func run(opts config.LoadOptions) error {
	cfg, err := config.LoadWithOptions(opts)
	if err != nil {
		return err
	}

	// Logging goes to stderr (stdout is for MCP protocol)
	level, levelErr := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(level, os.Stderr)
	if levelErr != nil {
		logger.Warn("using info log level", "error", levelErr)
	}
	for _, w := range cfg.Warnings {
		logger.Warn("ignored configuration value", "detail", w)
	}
	logger.Debug("starting handwrite-mcp",
		"version", Version, "built", BuildTime, "commit", GitCommit,
		"backend", cfg.Backend, "env_file", cfg.EnvFile)

	creds := openCredentials(cfg, logger)

	rec, closeRecognizer, err := newRecognizer(cfg, creds, logger)
	if err != nil {
		return err
	}
	defer closeRecognizer()

	pipeline := &notes.Pipeline{
		Recognizer: rec,
		Timeout:    cfg.RequestTimeout,
		Logger:     logger,
	}
	// Local recognition needs no key
	if cfg.Backend == config.BackendHuggingFace {
		pipeline.Credentials = creds
	}

	extract := imaging.DefaultExtractOptions()
	extract.Padding = cfg.Padding

	sess := session.New(pipeline, session.Options{
		ContainerWidth: cfg.ContainerWidth,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Extract:        extract,
		Logger:         logger,
	})

	srv := server.New(sess, creds,
		server.WithLogger(logger),
		server.WithVersion(Version),
		server.WithBackend(cfg.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// openCredentials returns the file-backed key store, seeded from the
// environment when it holds no key yet. Without a usable config directory
// the key lives in memory only.
func openCredentials(cfg *config.Config, logger *slog.Logger) credential.Store {
	path := cfg.CredentialFile
	if path == "" {
		p, err := credential.DefaultPath()
		if err != nil {
			logger.Warn("API key will not be saved", "error", err)
			return credential.NewMemoryStore(cfg.APIKey)
		}
		path = p
	}

	store := credential.NewFileStore(path)
	if cfg.APIKey != "" {
		if _, ok := store.Get(); !ok {
			if err := store.Set(cfg.APIKey); err != nil {
				logger.Warn("failed to save API key", "path", path, "error", err)
				return credential.NewMemoryStore(cfg.APIKey)
			}
			logger.Info("saved API key from environment", "path", path, "key", credential.Redact(cfg.APIKey))
		}
	}
	return store
}

func newRecognizer(cfg *config.Config, creds credential.Store, logger *slog.Logger) (recognize.Recognizer, func(), error) {
	switch cfg.Backend {
	case config.BackendTesseract:
		t, err := recognize.NewTesseract(cfg.TesseractLang)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using local recognition", "engine", "tesseract", "version", t.Version(), "language", t.Language())
		return t, func() { t.Close() }, nil
	default:
		hf := recognize.NewHuggingFace(cfg.ModelURL, creds, cfg.RequestTimeout, logger)
		logger.Info("using hosted recognition", "endpoint", hf.Endpoint)
		return hf, func() {}, nil
	}
}
