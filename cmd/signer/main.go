package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/garyjia/esign-wizard/internal/application/service"
	"github.com/garyjia/esign-wizard/internal/esign"
	"github.com/garyjia/esign-wizard/internal/gluehttp"
	"github.com/garyjia/esign-wizard/internal/projection"
	"github.com/garyjia/esign-wizard/internal/schemaload"
	"github.com/garyjia/esign-wizard/internal/transform"
	"github.com/garyjia/esign-wizard/pkg/utils"
)

// signer submits an exported form state for signature through a running glue
// service and prints the signing URL.
func main() {
	fs := pflag.NewFlagSet("signer", pflag.ExitOnError)
	glueURL := fs.String("glue-url", "http://localhost:4000", "Base URL of the glue service")
	statePath := fs.String("state", "", "Exported form state (JSON)")
	basePath := fs.String("base-pdf", "form/persona-juridica.pdf", "Base PDF to fill")
	schemaPath := fs.String("schema", "configs/form.json", "Wizard definition (JSON or YAML)")
	docName := fs.String("name", "", "Transaction name (defaults to the built-in one)")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall deadline")
	logLevel := fs.String("log-level", "info", "Log level")
	fs.Parse(os.Args[1:])

	if *statePath == "" {
		fmt.Fprintln(os.Stderr, "--state is required")
		fs.Usage()
		os.Exit(2)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      *logLevel,
		OutputPath: "stderr",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	registry := transform.DefaultRegistry()
	loader, err := schemaload.NewLoader(registry, logger)
	if err != nil {
		logger.Fatal("Failed to compile form schema", zap.Error(err))
	}
	schema, err := loader.LoadFile(*schemaPath)
	if err != nil {
		logger.Fatal("Failed to load wizard definition", zap.String("path", *schemaPath), zap.Error(err))
	}
	projector := projection.NewProjector(schema, registry, logger)

	raw, err := os.ReadFile(*statePath)
	if err != nil {
		logger.Fatal("Failed to read state file", zap.Error(err))
	}
	state, err := projector.Import(raw)
	if err != nil {
		logger.Fatal("Failed to import state file", zap.Error(err))
	}

	glue := gluehttp.NewClient(*glueURL, logger)

	txOpts := esign.DefaultTransactionOptions()
	if *docName != "" {
		txOpts.Name = *docName
	}
	seq := service.NewSequencer(
		projector,
		service.FileDocument{Path: *basePath},
		glue,
		glue,
		glue,
		logger.Sugar(),
		service.WithTransactionOptions(txOpts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	sub := seq.Run(ctx, state)
	if !sub.Succeeded() {
		logger.Error("Submission failed",
			zap.String("submission_id", sub.ID),
			zap.String("stage", sub.FailedStage.String()),
			zap.Error(sub.Err))
		os.Exit(1)
	}

	logger.Info("Package created", zap.String("package_id", sub.PackageID))
	fmt.Println(sub.SigningURL)
}
