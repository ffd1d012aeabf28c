// Package handler exposes the registration wizard endpoints.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"baryo/internal/platform/metrics"
	"baryo/internal/platform/middleware"
	"baryo/internal/registration"
	"baryo/internal/registration/models"
	"baryo/internal/registration/wizard"
	"baryo/internal/transport/http/shared"
	dErrors "baryo/pkg/domain-errors"
)

// One identity photo plus form overhead.
const maxUploadRequestBytes = 6 << 20

// Service defines the wizard operations the handler needs.
type Service interface {
	Start(ctx context.Context, userID string) (*wizard.Session, error)
	Get(ctx context.Context, userID, sessionID string) (*wizard.Session, error)
	UpdateField(ctx context.Context, userID, sessionID, field, value string) (*wizard.Session, error)
	Next(ctx context.Context, userID, sessionID string) (*registration.NextResult, error)
	Prev(ctx context.Context, userID, sessionID string) (*wizard.Session, error)
	Reset(ctx context.Context, userID, sessionID string) (*wizard.Session, error)
	Attach(ctx context.Context, userID, sessionID, field, filename, contentType string, data []byte) (*wizard.Session, error)
	Submit(ctx context.Context, userID, sessionID, bearerToken string) (*registration.SubmitResult, error)
}

// Handler handles registration wizard endpoints.
type Handler struct {
	logger       *slog.Logger
	wizards      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new registration Handler.
func New(
	wizards Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
) *Handler {
	return &Handler{
		logger:       logger,
		wizards:      wizards,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the wizard routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	wizardRouter := chi.NewRouter()
	wizardRouter.Use(middleware.Recovery(h.logger))
	wizardRouter.Use(middleware.RequestID)
	wizardRouter.Use(middleware.Device)
	wizardRouter.Use(middleware.Logger(h.logger))
	wizardRouter.Use(middleware.Timeout(30 * time.Second))
	wizardRouter.Use(middleware.LatencyMiddleware(h.metrics))
	wizardRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	wizardRouter.Post("/", h.handleStart)
	wizardRouter.Get("/{sessionID}", h.handleGet)
	wizardRouter.Patch("/{sessionID}", h.handleUpdateField)
	wizardRouter.Post("/{sessionID}/next", h.handleNext)
	wizardRouter.Post("/{sessionID}/prev", h.handlePrev)
	wizardRouter.Post("/{sessionID}/reset", h.handleReset)
	wizardRouter.Put("/{sessionID}/files/{field}", h.handleAttach)
	wizardRouter.Post("/{sessionID}/submit", h.handleSubmit)

	r.Mount("/wizard", wizardRouter)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.wizards.Start(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.writeFailure(ctx, w, "start wizard", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, sessionResponse(session, false))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.wizards.Get(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeFailure(ctx, w, "get wizard", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session, false))
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, err := h.wizards.UpdateField(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "sessionID"), req.Field, req.Value)
	if err != nil {
		h.writeFailure(ctx, w, "update wizard field", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session, false))
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.wizards.Next(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeFailure(ctx, w, "advance wizard", err)
		return
	}
	// A blocked advance is a normal outcome, not an error status: the
	// response carries the field errors for inline display.
	view := sessionResponse(result.Session, false)
	view.Advanced = &result.Advanced
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handlePrev(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.wizards.Prev(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeFailure(ctx, w, "rewind wizard", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session, false))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.wizards.Reset(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeFailure(ctx, w, "reset wizard", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session, false))
}

func (h *Handler) handleAttach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadRequestBytes); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file part is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable file part"))
		return
	}

	session, err := h.wizards.Attach(ctx, middleware.GetUserID(ctx),
		chi.URLParam(r, "sessionID"), chi.URLParam(r, "field"),
		header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.writeFailure(ctx, w, "attach wizard file", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session, true))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.wizards.Submit(ctx, middleware.GetUserID(ctx),
		chi.URLParam(r, "sessionID"), middleware.GetBearerToken(ctx))
	if err != nil {
		h.writeFailure(ctx, w, "submit registration", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"upstream": json.RawMessage(result.Response),
	})
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	switch code {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		h.logger.ErrorContext(ctx, op, slog.Any("error", err))
	default:
		h.logger.WarnContext(ctx, op, slog.Any("error", err))
	}
	if code == dErrors.CodeInternal {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal error"))
		return
	}
	shared.WriteError(w, err)
}

type sessionView struct {
	ID         string            `json:"id"`
	Step       int               `json:"step"`
	StepName   string            `json:"step_name"`
	Record     map[string]string `json:"record"`
	StepErrors map[string]string `json:"step_errors"`
	Previews   map[string]string `json:"previews,omitempty"`
	Uploaded   []string          `json:"uploaded"`
	ResetCount int               `json:"reset_count"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Advanced   *bool             `json:"advanced,omitempty"`
}

// sessionResponse redacts secrets and attachment bytes. Previews are large
// data URLs, so they ride along only on the upload response itself.
func sessionResponse(session *wizard.Session, withPreviews bool) sessionView {
	record := make(map[string]string, len(session.Record))
	for key, value := range session.Record {
		if key == models.FieldPassword || key == models.FieldPasswordConfirm {
			continue
		}
		record[key] = value
	}
	uploaded := make([]string, 0, len(session.Attachments))
	for _, field := range models.FileFields {
		if session.Attachments[field] != nil {
			uploaded = append(uploaded, field)
		}
	}
	view := sessionView{
		ID:         session.ID,
		Step:       session.Step,
		StepName:   wizard.StepAt(session.Step).Name,
		Record:     record,
		StepErrors: session.StepErrors,
		Uploaded:   uploaded,
		ResetCount: session.ResetCount,
		UpdatedAt:  session.UpdatedAt,
	}
	if withPreviews {
		view.Previews = session.Previews
	}
	return view
}
