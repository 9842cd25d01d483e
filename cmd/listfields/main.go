package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/garyjia/esign-wizard/internal/pdfdoc"
	"github.com/garyjia/esign-wizard/pkg/utils"
)

type inventory struct {
	Fields []pdfdoc.FieldInfo `json:"fields"`
	Labels []pdfdoc.Label     `json:"labels"`
}

// listfields inventories the AcroForm widgets and text lines of a PDF and
// writes an example data file the fill process accepts.
func main() {
	fs := pflag.NewFlagSet("listfields", pflag.ExitOnError)
	outDir := fs.StringP("out", "o", ".", "Directory for the generated files")
	fieldsName := fs.String("fields-file", "fields_and_labels.json", "Inventory file name")
	exampleName := fs.String("example-file", "example.json", "Example data file name")
	verbose := fs.BoolP("verbose", "v", false, "Debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: listfields [flags] <document.pdf>\n")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	logger, err := utils.NewCLILogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	pdf, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		logger.Fatal("Failed to read document", zap.Error(err))
	}

	inspector := pdfdoc.NewInspector(logger)
	fields, err := inspector.ListFields(pdf)
	if err != nil {
		logger.Fatal("Failed to list form fields", zap.Error(err))
	}
	labels, err := inspector.ListLabels(pdf)
	if err != nil {
		logger.Warn("Text labels unavailable", zap.Error(err))
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}
	fieldsPath := filepath.Join(*outDir, *fieldsName)
	if err := writeJSON(fieldsPath, inventory{Fields: fields, Labels: labels}); err != nil {
		logger.Fatal("Failed to write inventory", zap.Error(err))
	}
	examplePath := filepath.Join(*outDir, *exampleName)
	if err := writeJSON(examplePath, pdfdoc.ExampleData(fields)); err != nil {
		logger.Fatal("Failed to write example data", zap.Error(err))
	}

	logger.Info("Form fields listed",
		zap.Int("fields", len(fields)),
		zap.Int("labels", len(labels)),
		zap.String("inventory", fieldsPath),
		zap.String("example", examplePath))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
