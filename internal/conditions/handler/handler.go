package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fellinglicence/internal/conditions/models"
	"fellinglicence/internal/species"
	id "fellinglicence/pkg/domain"
	dErrors "fellinglicence/pkg/domain-errors"
	"fellinglicence/pkg/platform/httputil"
	"fellinglicence/pkg/requestcontext"
)

// Service defines the condition operations exposed over HTTP.
type Service interface {
	Calculate(ctx context.Context, applicationID id.ApplicationID, operations []models.RestockingOperation, isDraft bool) (*models.ConditionsResult, error)
	RetrieveExisting(ctx context.Context, applicationID id.ApplicationID) (*models.ConditionsResult, error)
}

// Handler wires condition endpoints to the condition service.
type Handler struct {
	service Service
	catalog *species.Catalog
	logger  *slog.Logger
}

func New(service Service, catalog *species.Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		catalog: catalog,
		logger:  logger,
	}
}

// Register mounts condition endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications/{applicationID}/conditions/calculate", h.HandleCalculate)
	r.Get("/applications/{applicationID}/conditions", h.HandleRetrieve)
}

// HandleCalculate handles POST /applications/{applicationID}/conditions/calculate.
// ?draft=true previews without persisting.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	draft := false
	if raw := r.URL.Query().Get("draft"); raw != "" {
		if draft, err = strconv.ParseBool(raw); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "draft must be true or false"))
			return
		}
	}

	req, ok := httputil.DecodeAndPrepare[CalculateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	operations, err := species.PrepareOperations(req.ParsedOperations(), h.catalog)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Calculate(ctx, applicationID, operations, draft)
	if err != nil {
		h.logger.ErrorContext(ctx, "condition calculation failed",
			"request_id", requestID,
			"application_id", applicationID.String(),
			"draft", draft,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "conditions calculated",
		"request_id", requestID,
		"application_id", applicationID.String(),
		"draft", draft,
		"operations", len(operations),
		"conditions", len(result.Conditions),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(applicationID, result, &draft))
}

// HandleRetrieve handles GET /applications/{applicationID}/conditions.
func (h *Handler) HandleRetrieve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.RetrieveExisting(ctx, applicationID)
	if err != nil {
		h.logger.ErrorContext(ctx, "condition retrieval failed",
			"request_id", requestcontext.RequestID(ctx),
			"application_id", applicationID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(applicationID, result, nil))
}
