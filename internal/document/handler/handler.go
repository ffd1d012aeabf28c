// Package handler exposes document request endpoints.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"baryo/internal/document"
	"baryo/internal/platform/metrics"
	"baryo/internal/platform/middleware"
	"baryo/internal/submission"
	"baryo/internal/transport/http/shared"
	dErrors "baryo/pkg/domain-errors"
)

// One requirement upload plus form overhead.
const maxUploadRequestBytes = 6 << 20

// Service defines the document request operations the handler needs.
type Service interface {
	Prepare(ctx context.Context, userID, documentType string, tokens []string, requirements []document.Requirement) (*document.Session, error)
	Get(ctx context.Context, userID, sessionID string) (*document.Session, error)
	SetValue(ctx context.Context, userID, sessionID, token, value string) (*document.Session, error)
	SetChecked(ctx context.Context, userID, sessionID, token string, checked bool) (*document.Session, error)
	AttachRequirement(ctx context.Context, userID, sessionID, requirementID string, upload *document.Upload) (*document.Session, error)
	Submit(ctx context.Context, userID, sessionID, bearerToken string) (*document.SubmitResult, error)
}

// Lister fetches upstream collections on behalf of the caller.
type Lister interface {
	FetchList(ctx context.Context, path, bearerToken string) (*submission.List, error)
}

// Handler handles document request endpoints.
type Handler struct {
	logger       *slog.Logger
	documents    Service
	lister       Lister
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new document Handler.
func New(
	documents Service,
	lister Lister,
	logger *slog.Logger,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
) *Handler {
	return &Handler{
		logger:       logger,
		documents:    documents,
		lister:       lister,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the document routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	documentRouter := chi.NewRouter()
	documentRouter.Use(middleware.Recovery(h.logger))
	documentRouter.Use(middleware.RequestID)
	documentRouter.Use(middleware.Device)
	documentRouter.Use(middleware.Logger(h.logger))
	documentRouter.Use(middleware.Timeout(30 * time.Second))
	documentRouter.Use(middleware.LatencyMiddleware(h.metrics))
	documentRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	documentRouter.Get("/types", h.handleListTypes)
	documentRouter.Post("/forms", h.handlePrepare)
	documentRouter.Get("/forms/{sessionID}", h.handleGet)
	documentRouter.Patch("/forms/{sessionID}/values", h.handleSetValue)
	documentRouter.Patch("/forms/{sessionID}/checkboxes", h.handleSetChecked)
	documentRouter.Put("/forms/{sessionID}/requirements/{requirementID}", h.handleAttach)
	documentRouter.Post("/forms/{sessionID}/submit", h.handleSubmit)

	r.Mount("/documents", documentRouter)
}

type prepareRequest struct {
	DocumentType string                 `json:"document_type"`
	Tokens       []string               `json:"tokens"`
	Requirements []document.Requirement `json:"requirements"`
}

func (h *Handler) handlePrepare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, err := h.documents.Prepare(ctx, userID, req.DocumentType, req.Tokens, req.Requirements)
	if err != nil {
		h.writeFailure(ctx, w, "prepare document form", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, sessionResponse(session))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.documents.Get(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeFailure(ctx, w, "get document form", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session))
}

type setValueRequest struct {
	Token string `json:"token"`
	Value string `json:"value"`
}

func (h *Handler) handleSetValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, err := h.documents.SetValue(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "sessionID"), req.Token, req.Value)
	if err != nil {
		h.writeFailure(ctx, w, "set placeholder value", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session))
}

type setCheckedRequest struct {
	Token   string `json:"token"`
	Checked bool   `json:"checked"`
}

func (h *Handler) handleSetChecked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setCheckedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, err := h.documents.SetChecked(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "sessionID"), req.Token, req.Checked)
	if err != nil {
		h.writeFailure(ctx, w, "toggle checkbox", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session))
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

	upload := &document.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	session, err := h.documents.AttachRequirement(ctx, middleware.GetUserID(ctx),
		chi.URLParam(r, "sessionID"), chi.URLParam(r, "requirementID"), upload)
	if err != nil {
		h.writeFailure(ctx, w, "attach requirement", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse(session))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.documents.Submit(ctx, middleware.GetUserID(ctx),
		chi.URLParam(r, "sessionID"), middleware.GetBearerToken(ctx))
	if err != nil {
		h.writeFailure(ctx, w, "submit document request", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"document_type": result.DocumentType,
		"upstream":      json.RawMessage(result.Response),
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.lister.FetchList(ctx, "/api/document-types", middleware.GetBearerToken(ctx))
	if err != nil {
		h.writeFailure(ctx, w, "list document types", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

// writeFailure logs server-side failures and hides their details; client
// errors pass through untouched.
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
	ID           string                 `json:"id"`
	DocumentType string                 `json:"document_type"`
	Form         any                    `json:"form"`
	Requirements []document.Requirement `json:"requirements"`
	Uploaded     []string               `json:"uploaded"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// sessionResponse omits upload bytes; clients only need to know which
// requirements are satisfied.
func sessionResponse(session *document.Session) sessionView {
	uploaded := make([]string, 0, len(session.Uploads))
	for _, requirement := range session.Requirements {
		if _, ok := session.Uploads[requirement.ID]; ok {
			uploaded = append(uploaded, requirement.ID)
		}
	}
	return sessionView{
		ID:           session.ID,
		DocumentType: session.DocumentType,
		Form:         session.Form,
		Requirements: session.Requirements,
		Uploaded:     uploaded,
		UpdatedAt:    session.UpdatedAt,
	}
}
