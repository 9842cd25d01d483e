package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/esign"
	"github.com/garyjia/esign-wizard/internal/review"
)

const (
	msgFormUnavailable = "Formulario no disponible"
	msgUnknownField    = "Campo desconocido"
	msgImportFailed    = "No se pudo importar el archivo"
	msgInvalidForm     = "El formulario tiene errores"
	msgSubmitFailed    = "Error al enviar a firma"
	msgReviewFailed    = "Error al generar la revisión"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EditRequest is one live edit of a field
type EditRequest struct {
	State form.State `json:"state"`
	Field string     `json:"field" binding:"required"`
	Value any        `json:"value"`
}

// ValidationResponse lists the rejected fields of a state
type ValidationResponse struct {
	Valid    bool                `json:"valid"`
	Error    string              `json:"error,omitempty"`
	Problems []form.FieldProblem `json:"problems,omitempty"`
}

// SubmissionResponse is the outcome of /api/wizard/sign
type SubmissionResponse struct {
	SubmissionID string `json:"submissionId"`
	State        string `json:"state"`
	SigningURL   string `json:"signingUrl,omitempty"`
	PackageID    string `json:"packageId,omitempty"`
	Error        string `json:"error,omitempty"`
}

// FormSchema handles GET /api/form/schema
func (h *Handlers) FormSchema(c *gin.Context) {
	if !h.formAvailable(c) {
		return
	}
	c.JSON(http.StatusOK, h.deps.Form.Schema())
}

// FormDefaults handles GET /api/form/defaults
func (h *Handlers) FormDefaults(c *gin.Context) {
	if !h.formAvailable(c) {
		return
	}
	c.JSON(http.StatusOK, h.deps.Form.Defaults())
}

// FormEdit handles POST /api/form/edit
func (h *Handlers) FormEdit(c *gin.Context) {
	if !h.formAvailable(c) {
		return
	}
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidJSON})
		return
	}
	if _, ok := h.deps.Form.Schema().Field(req.Field); !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgUnknownField})
		return
	}
	if req.State == nil {
		req.State = form.State{}
	}
	c.JSON(http.StatusOK, h.deps.Form.Edit(req.State, req.Field, req.Value))
}

// FormProject handles POST /api/form/project
func (h *Handlers) FormProject(c *gin.Context) {
	state, ok := h.bindState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.deps.Form.Project(state))
}

// FormImport handles POST /api/form/import. The body may be the raw exported
// document or a multipart upload in the "file" part.
func (h *Handlers) FormImport(c *gin.Context) {
	if !h.formAvailable(c) {
		return
	}

	var data []byte
	var err error
	if fh, ferr := c.FormFile("file"); ferr == nil {
		data, err = readPart(fh)
	} else {
		data, err = c.GetRawData()
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgImportFailed})
		return
	}

	state, err := h.deps.Form.Import(data)
	if err != nil {
		var parseErr *form.ImportParseError
		if errors.As(err, &parseErr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgImportFailed})
			return
		}
		h.logger.Errorw("Import failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgImportFailed})
		return
	}
	c.JSON(http.StatusOK, state)
}

// FormVisible handles POST /api/form/visible
func (h *Handlers) FormVisible(c *gin.Context) {
	state, ok := h.bindState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, form.VisibleFields(h.deps.Form.Schema(), state))
}

// FormValidate handles POST /api/form/validate
func (h *Handlers) FormValidate(c *gin.Context) {
	state, ok := h.bindState(c)
	if !ok {
		return
	}
	if resp, failed := validationFailure(form.ValidateState(h.deps.Form.Schema(), state)); failed {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, ValidationResponse{Valid: true})
}

// FormReview handles POST /api/form/review
func (h *Handlers) FormReview(c *gin.Context) {
	state, ok := h.bindState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, review.Build(h.deps.Form, state))
}

// FormReviewXLSX handles POST /api/form/review.xlsx
func (h *Handlers) FormReviewXLSX(c *gin.Context) {
	state, ok := h.bindState(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := review.WriteXLSX(&buf, h.config.AppName, review.Build(h.deps.Form, state)); err != nil {
		h.logger.Errorw("Review export failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgReviewFailed})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=revision.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// WizardSign handles POST /api/wizard/sign: validate, then run the whole
// submission against the configured base document
func (h *Handlers) WizardSign(c *gin.Context) {
	if h.deps.Submitter == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: msgFormUnavailable})
		return
	}
	state, ok := h.bindState(c)
	if !ok {
		return
	}
	if resp, failed := validationFailure(form.ValidateState(h.deps.Form.Schema(), state)); failed {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	sub := h.deps.Submitter.Run(c.Request.Context(), state)
	resp := SubmissionResponse{
		SubmissionID: sub.ID,
		State:        sub.State.String(),
		PackageID:    sub.PackageID,
		SigningURL:   sub.SigningURL,
	}
	if sub.Succeeded() {
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Error = msgSubmitFailed
	c.JSON(submissionStatus(sub.Err), resp)
}

func (h *Handlers) formAvailable(c *gin.Context) bool {
	if h.deps.Form == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: msgFormUnavailable})
		return false
	}
	return true
}

func (h *Handlers) bindState(c *gin.Context) (form.State, bool) {
	if !h.formAvailable(c) {
		return nil, false
	}
	var state form.State
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidJSON})
		return nil, false
	}
	if state == nil {
		state = form.State{}
	}
	return state, true
}

func validationFailure(err error) (ValidationResponse, bool) {
	if err == nil {
		return ValidationResponse{}, false
	}
	resp := ValidationResponse{Error: msgInvalidForm}
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		resp.Problems = verr.Problems
	}
	return resp, true
}

// submissionStatus relays provider client errors and maps everything else to 500
func submissionStatus(err error) int {
	status := 0
	var subErr *esign.SubmissionError
	var urlErr *esign.SigningURLError
	switch {
	case errors.As(err, &subErr):
		status = subErr.StatusCode
	case errors.As(err, &urlErr):
		status = urlErr.StatusCode
	}
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusInternalServerError
}

func jsonValid(body []byte) bool {
	return len(bytes.TrimSpace(body)) > 0 && json.Valid(body)
}
