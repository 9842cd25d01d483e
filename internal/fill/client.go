// Package fill drives the external process that merges form data into a PDF
// and keeps the audit copies of every request.
package fill

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/pdfdoc"
	"github.com/garyjia/esign-wizard/internal/storage"
)

// Config describes the fill process invocation:
// <Executable> <Script> <input.pdf> <datos.json> <output.pdf> <Mode>
type Config struct {
	Executable string
	Script     string
	Mode       string
}

// AuditStore is the subset of storage.AuditStore the client needs
type AuditStore interface {
	Reserve() (storage.Artifacts, error)
	SaveFileWithType(fullPath string, content []byte, fileType storage.FileType) error
}

// ScratchCleaner deletes a request's staged uploads once it succeeded
type ScratchCleaner interface {
	DeleteRequestFolder(requestID string) error
}

// DocumentInspector summarizes a produced document for the logs
type DocumentInspector interface {
	Inspect(pdf []byte) (*pdfdoc.Info, error)
}

// Input is one fill request. A staged path takes the place of its in-memory
// counterpart.
type Input struct {
	PDF      []byte
	Data     []byte
	PDFPath  string
	DataPath string

	// RequestID names the scratch folder removed after a successful fill
	RequestID string
}

func (in Input) load() (pdf, data []byte, err error) {
	pdf, data = in.PDF, in.Data
	if in.PDFPath != "" {
		if pdf, err = os.ReadFile(in.PDFPath); err != nil {
			return nil, nil, fmt.Errorf("read staged pdf: %w", err)
		}
	}
	if in.DataPath != "" {
		if data, err = os.ReadFile(in.DataPath); err != nil {
			return nil, nil, fmt.Errorf("read staged data: %w", err)
		}
	}
	return pdf, data, nil
}

// Files are the audit copies of a request
type Files struct {
	InputPDF  string `json:"inputPdf"`
	JSONPath  string `json:"jsonPath"`
	OutputPDF string `json:"outputPdf"`
}

// Result is a filled document plus where its audit trail lives
type Result struct {
	PDF   []byte
	Files Files
	Stamp string

	// FieldLogPath is set when the process left a per-field log behind
	FieldLogPath string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithScratch sets the cleaner used for staged uploads
func WithScratch(s ScratchCleaner) ClientOption {
	return func(c *Client) {
		c.scratch = s
	}
}

// WithInspector enables a structural check of every produced document
func WithInspector(i DocumentInspector) ClientOption {
	return func(c *Client) {
		c.inspector = i
	}
}

// Client is the Document Fill Client
type Client struct {
	cfg       Config
	store     AuditStore
	runner    Runner
	scratch   ScratchCleaner
	inspector DocumentInspector
	logger    *zap.Logger
}

// NewClient creates a fill client
func NewClient(cfg Config, store AuditStore, runner Runner, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		cfg:    cfg,
		store:  store,
		runner: runner,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fill persists the inputs, runs the process and returns the produced document.
// On a non-zero exit the output file is never read and a *ProcessError is returned.
func (c *Client) Fill(ctx context.Context, in Input) (*Result, error) {
	inputPDF, inputData, err := in.load()
	if err != nil {
		return nil, err
	}
	if len(inputPDF) == 0 || len(inputData) == 0 {
		return nil, ErrMissingInput
	}

	artifacts, err := c.store.Reserve()
	if err != nil {
		return nil, fmt.Errorf("reserve audit files: %w", err)
	}

	if err := c.store.SaveFileWithType(artifacts.InputPDF, inputPDF, storage.FileTypePDF); err != nil {
		return nil, fmt.Errorf("save input pdf: %w", err)
	}
	if err := c.store.SaveFileWithType(artifacts.DataJSON, inputData, storage.FileTypeJSON); err != nil {
		return nil, fmt.Errorf("save data json: %w", err)
	}

	args := []string{c.cfg.Script, artifacts.InputPDF, artifacts.DataJSON, artifacts.OutputPDF}
	if c.cfg.Mode != "" {
		args = append(args, c.cfg.Mode)
	}

	logger := c.logger.With(zap.String("stamp", artifacts.Stamp))
	stdout := newLineLogger(logger, "fill stdout", false)
	stderr := newLineLogger(logger, "fill stderr", true)

	start := time.Now()
	exitCode, err := c.runner.Run(ctx, c.cfg.Executable, args, stdout, stderr)
	stdout.Flush()
	stderr.Flush()
	if err != nil {
		logger.Error("Failed to run fill process", zap.Error(err))
		return nil, fmt.Errorf("run fill process: %w", err)
	}
	if exitCode != 0 {
		logger.Error("Fill process exited with error",
			zap.Int("exit_code", exitCode),
			zap.Duration("duration", time.Since(start)))
		return nil, &ProcessError{ExitCode: exitCode}
	}

	pdf, err := os.ReadFile(artifacts.OutputPDF)
	if err != nil {
		return nil, fmt.Errorf("read output pdf: %w", err)
	}

	result := &Result{
		PDF:   pdf,
		Stamp: artifacts.Stamp,
		Files: Files{
			InputPDF:  artifacts.InputPDF,
			JSONPath:  artifacts.DataJSON,
			OutputPDF: artifacts.OutputPDF,
		},
	}
	if _, err := os.Stat(artifacts.FieldLogPath()); err == nil {
		result.FieldLogPath = artifacts.FieldLogPath()
	}

	c.inspect(logger, pdf)

	if c.scratch != nil && in.RequestID != "" {
		if err := c.scratch.DeleteRequestFolder(in.RequestID); err != nil {
			logger.Warn("Failed to delete scratch uploads",
				zap.String("request_id", in.RequestID),
				zap.Error(err))
		}
	}

	logger.Info("Document filled",
		zap.String("output", artifacts.OutputPDF),
		zap.Int("size", len(pdf)),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

// FillDocument fills base with a projected state
func (c *Client) FillDocument(ctx context.Context, base []byte, projected form.State) ([]byte, error) {
	data, err := json.Marshal(projected)
	if err != nil {
		return nil, fmt.Errorf("encode projected state: %w", err)
	}
	result, err := c.Fill(ctx, Input{PDF: base, Data: data})
	if err != nil {
		return nil, err
	}
	return result.PDF, nil
}

func (c *Client) inspect(logger *zap.Logger, pdf []byte) {
	if c.inspector == nil {
		return
	}
	info, err := c.inspector.Inspect(pdf)
	if err != nil {
		logger.Warn("Filled document did not parse", zap.Error(err))
		return
	}
	logger.Debug("Filled document",
		zap.Int("pages", info.PageCount),
		zap.Bool("acroform", info.HasAcroForm),
		zap.Int("fields", info.FieldCount))
}

// lineLogger forwards process output to the logger one line at a time
type lineLogger struct {
	logger *zap.Logger
	msg    string
	isErr  bool
	buf    strings.Builder
}

var _ io.Writer = (*lineLogger)(nil)

func newLineLogger(logger *zap.Logger, msg string, isErr bool) *lineLogger {
	return &lineLogger{logger: logger, msg: msg, isErr: isErr}
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.buf.Write(p)
	text := l.buf.String()
	idx := strings.LastIndexByte(text, '\n')
	if idx < 0 {
		return len(p), nil
	}

	sc := bufio.NewScanner(strings.NewReader(text[:idx]))
	for sc.Scan() {
		l.emit(sc.Text())
	}
	l.buf.Reset()
	l.buf.WriteString(text[idx+1:])
	return len(p), nil
}

// Flush emits any trailing partial line
func (l *lineLogger) Flush() {
	if l.buf.Len() > 0 {
		l.emit(l.buf.String())
		l.buf.Reset()
	}
}

func (l *lineLogger) emit(line string) {
	if line == "" {
		return
	}
	if l.isErr {
		l.logger.Warn(l.msg, zap.String("line", line))
	} else {
		l.logger.Info(l.msg, zap.String("line", line))
	}
}
