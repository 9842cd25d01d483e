package http

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/esign-wizard/internal/application/service"
	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/esign"
	"github.com/garyjia/esign-wizard/internal/fill"
)

// Client-facing messages, kept compatible with the browser frontend
const (
	msgMissingParts    = "Faltan PDF o JSON"
	msgFillFailed      = "Error al generar PDF"
	msgProviderFailed  = "Error comunicando con OneSpan"
	msgMissingPackage  = "Falta packageId"
	msgInvalidJSON     = "JSON inválido"
	msgSigningURLError = "Error obteniendo URL de firma"
	msgTooLarge        = "Archivo demasiado grande"
)

const (
	responseTypePDF    = "pdf"
	responseTypeBase64 = "base64"
)

// Filler produces filled documents with an audit trail
type Filler interface {
	Fill(ctx context.Context, in fill.Input) (*fill.Result, error)
}

// Relay forwards e-signature calls to the provider
type Relay interface {
	ForwardPackage(ctx context.Context, body []byte) (*esign.RawResponse, error)
	SigningURL(ctx context.Context, packageID string) (string, error)
}

// FormProjector is the form state API exposed to the frontend
type FormProjector interface {
	Schema() *form.Schema
	Defaults() form.State
	Edit(state form.State, name string, value any) form.State
	Project(state form.State) form.State
	Import(data []byte) (form.State, error)
}

// Submitter runs a whole submission in-process
type Submitter interface {
	Run(ctx context.Context, state form.State) *service.Submission
}

// ScratchStore holds uploads for the lifetime of one request
type ScratchStore interface {
	Write(requestID, name string, content []byte) (string, error)
}

// Dependencies are the collaborators of the HTTP layer. Form and Submitter may
// be nil, in which case their routes answer 503.
type Dependencies struct {
	Filler    Filler
	Relay     Relay
	Form      FormProjector
	Submitter Submitter
	Scratch   ScratchStore
}

// Handlers contains HTTP request handlers
type Handlers struct {
	deps   Dependencies
	config ServerConfig
	logger Logger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(deps Dependencies, config ServerConfig, logger Logger) *Handlers {
	return &Handlers{
		deps:   deps,
		config: config,
		logger: logger,
	}
}

// ErrorResponse is the body of every failed glue call
type ErrorResponse struct {
	Error string `json:"error"`
}

// FillBase64Response is returned by /api/fill-pdf when responseType=base64
type FillBase64Response struct {
	Base64 string     `json:"base64"`
	Files  fill.Files `json:"files"`
}

// SigningURLRequest is the body of /api/getSigningUrl
type SigningURLRequest struct {
	PackageID string `json:"packageId"`
}

// SigningURLResponse is returned by /api/getSigningUrl
type SigningURLResponse struct {
	SigningURL string `json:"signingUrl"`
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.config.AppName,
		"version": h.config.Version,
	})
}

// FillPDF handles POST /api/fill-pdf
func (h *Handlers) FillPDF(c *gin.Context) {
	pdfHeader, pdfErr := c.FormFile("pdf")
	jsonHeader, jsonErr := c.FormFile("json")
	if pdfErr != nil || jsonErr != nil {
		if isTooLarge(pdfErr) || isTooLarge(jsonErr) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingParts})
		return
	}

	pdf, err := readPart(pdfHeader)
	if err != nil {
		h.logger.Errorw("Failed to read pdf part", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingParts})
		return
	}
	data, err := readPart(jsonHeader)
	if err != nil {
		h.logger.Errorw("Failed to read json part", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingParts})
		return
	}

	in := fill.Input{PDF: pdf, Data: data}
	if h.deps.Scratch != nil {
		in.RequestID = c.GetString(requestIDKey)
		if path, ok := h.stage(in.RequestID, "pdf-"+pdfHeader.Filename, pdf); ok {
			in.PDF, in.PDFPath = nil, path
		}
		if path, ok := h.stage(in.RequestID, "json-"+jsonHeader.Filename, data); ok {
			in.Data, in.DataPath = nil, path
		}
	}

	result, err := h.deps.Filler.Fill(c.Request.Context(), in)
	if err != nil {
		h.logger.Errorw("Fill failed", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgFillFailed})
		return
	}

	if c.PostForm("responseType") == responseTypeBase64 {
		c.JSON(http.StatusOK, FillBase64Response{
			Base64: base64.StdEncoding.EncodeToString(result.PDF),
			Files:  result.Files,
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Stamp+"-output.pdf")
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}

// Sign handles POST /api/sign by relaying the transaction to the provider
func (h *Handlers) Sign(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidJSON})
		return
	}
	if !jsonValid(body) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidJSON})
		return
	}

	resp, err := h.deps.Relay.ForwardPackage(c.Request.Context(), body)
	if err != nil {
		h.logger.Errorw("Provider relay failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgProviderFailed})
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

// GetSigningURL handles POST /api/getSigningUrl
func (h *Handlers) GetSigningURL(c *gin.Context) {
	var req SigningURLRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PackageID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingPackage})
		return
	}

	url, err := h.deps.Relay.SigningURL(c.Request.Context(), req.PackageID)
	if err != nil {
		h.logger.Errorw("Signing URL lookup failed", "package_id", req.PackageID, "error", err)
		var urlErr *esign.SigningURLError
		if errors.As(err, &urlErr) && urlErr.StatusCode != 0 {
			c.JSON(urlErr.StatusCode, ErrorResponse{Error: msgSigningURLError})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgSigningURLError})
		return
	}

	c.JSON(http.StatusOK, SigningURLResponse{SigningURL: url})
}

// stage writes one upload to scratch; on failure the caller keeps it in memory
func (h *Handlers) stage(requestID, name string, content []byte) (string, bool) {
	path, err := h.deps.Scratch.Write(requestID, name, content)
	if err != nil {
		h.logger.Warnw("Failed to stage upload", "request_id", requestID, "file", name, "error", err)
		return "", false
	}
	return path, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return err != nil && errors.As(err, &maxErr)
}
