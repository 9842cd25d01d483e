package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/garyjia/esign-wizard/internal/application/dispatcher"
	"github.com/garyjia/esign-wizard/internal/application/service"
	"github.com/garyjia/esign-wizard/internal/config"
	"github.com/garyjia/esign-wizard/internal/domain/event"
	"github.com/garyjia/esign-wizard/internal/esign"
	"github.com/garyjia/esign-wizard/internal/fill"
	httpapi "github.com/garyjia/esign-wizard/internal/interfaces/http"
	"github.com/garyjia/esign-wizard/internal/pdfdoc"
	"github.com/garyjia/esign-wizard/internal/projection"
	"github.com/garyjia/esign-wizard/internal/schemaload"
	"github.com/garyjia/esign-wizard/internal/storage"
	"github.com/garyjia/esign-wizard/internal/transform"
	"github.com/garyjia/esign-wizard/pkg/utils"
)

const (
	version     = "1.0.0"
	journalFile = "submissions.jsonl"
)

func main() {
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	// Load configuration
	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Service:    "glue",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting e-sign glue service",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port))

	if cfg.ESign.APIKey == "" {
		logger.Warn("No e-sign API key configured; provider calls will be rejected")
	}

	// Audit directory must exist before the first request
	auditStore := storage.NewAuditStore(cfg.Audit.Dir, logger)
	if err := auditStore.EnsureDir(); err != nil {
		logger.Fatal("Failed to create audit directory", zap.Error(err))
	}
	scratch := storage.NewScratchManager(cfg.Audit.ScratchDir, logger)

	// Document fill client
	filler := fill.NewClient(fill.Config{
		Executable: cfg.Fill.Executable,
		Script:     cfg.Fill.Script,
		Mode:       cfg.Fill.Mode,
	}, auditStore, &fill.ExecRunner{}, logger,
		fill.WithScratch(scratch),
		fill.WithInspector(pdfdoc.NewInspector(logger)),
	)

	// E-signature provider client
	provider := esign.NewClient(esign.Config{
		BaseURL: cfg.ESign.BaseURL,
		APIKey:  cfg.ESign.APIKey,
		RoleID:  cfg.ESign.RoleID,
		Timeout: cfg.ESign.Timeout,
	}, logger)

	deps := httpapi.Dependencies{
		Filler:  filler,
		Relay:   provider,
		Scratch: scratch,
	}

	// Wizard definition; the glue endpoints keep working without it
	registry := transform.DefaultRegistry()
	projector, err := loadProjector(cfg.Form.SchemaPath, registry, logger)
	if err != nil {
		logger.Warn("Form schema unavailable; form endpoints disabled",
			zap.String("path", cfg.Form.SchemaPath),
			zap.Error(err))
	} else {
		deps.Form = projector

		events := dispatcher.NewDispatcher(dispatcher.WithLogger(logger.Sugar()))
		defer events.Close()
		journal := storage.NewJournal(filepath.Join(cfg.Audit.Dir, journalFile))
		events.SubscribeAll("journal", func(ctx context.Context, evt *event.Event) error {
			return journal.Append(evt)
		})
		logger.Info("Submission journal enabled",
			zap.String("path", journal.Path()),
			zap.Strings("handlers", events.Handlers(event.TypeSubmissionReady)))

		txOpts := esign.DefaultTransactionOptions()
		txOpts.RoleID = cfg.ESign.RoleID
		if cfg.Form.AppName != "" {
			txOpts.Name = cfg.Form.AppName
		}

		deps.Submitter = service.NewSequencer(
			projector,
			service.FileDocument{Path: cfg.Form.BaseDocumentPath},
			filler,
			provider,
			provider,
			logger.Sugar(),
			service.WithAsyncPublisher(events),
			service.WithTransactionOptions(txOpts),
		)
	}

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AppName:        cfg.Form.AppName,
		Version:        version,
	}, deps, logger.Sugar())

	// Wait for interrupt signal to gracefully shutdown the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Server started", zap.String("address", server.Address()))
	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}

func loadProjector(path string, registry *transform.Registry, logger *zap.Logger) (*projection.Projector, error) {
	loader, err := schemaload.NewLoader(registry, logger)
	if err != nil {
		return nil, err
	}
	schema, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return projection.NewProjector(schema, registry, logger), nil
}
