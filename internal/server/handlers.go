package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shiftforge/roster/internal/auth"
	"github.com/shiftforge/roster/internal/authz"
	"github.com/shiftforge/roster/internal/diff"
	"github.com/shiftforge/roster/internal/export"
	"github.com/shiftforge/roster/internal/httpapi"
	"github.com/shiftforge/roster/internal/model"
	"github.com/shiftforge/roster/internal/solver"
	"github.com/shiftforge/roster/internal/storage"
)

// Handlers holds the dependencies HTTP handlers need.
type Handlers struct {
	db                  *storage.DB
	jwtMgr              *auth.JWTManager
	logger              *slog.Logger
	version             string
	maxRequestBodyBytes int64
	openAPISpec         []byte
}

// HandlersDeps are the dependencies required to build Handlers.
type HandlersDeps struct {
	DB                  *storage.DB
	JWTMgr              *auth.JWTManager
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
	OpenAPISpec         []byte
}

// NewHandlers constructs Handlers from its dependencies.
func NewHandlers(deps HandlersDeps) *Handlers {
	return &Handlers{
		db:                  deps.DB,
		jwtMgr:              deps.JWTMgr,
		logger:              deps.Logger,
		version:             deps.Version,
		maxRequestBodyBytes: deps.MaxRequestBodyBytes,
		openAPISpec:         deps.OpenAPISpec,
	}
}

// adminOrgID is the organization the seeded admin key is scoped to. Real
// orgs are created through normal storage writes; this one only exists to
// give the bootstrap key somewhere to live.
const adminOrgID = "admin"

// adminKeyID is deterministic so operators can compute it offline instead
// of having to scrape it from a log line.
var adminKeyID = uuid.NewSHA1(uuid.Nil, []byte("rosterd-admin"))

// SeedAdmin creates the initial admin API key if none exist yet. Call once
// at startup; a no-op once any key has been seeded or rotated in.
func (h *Handlers) SeedAdmin(ctx context.Context, adminAPIKey string) error {
	if adminAPIKey == "" {
		h.logger.Info("no admin API key configured, skipping admin seed")
		return nil
	}

	count, err := h.db.CountAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("seed admin: count api keys: %w", err)
	}
	if count > 0 {
		h.logger.Info("api_keys table not empty, skipping admin seed")
		return nil
	}

	if err := h.db.PutOrganization(ctx, model.Organization{
		ID:       adminOrgID,
		Name:     "Admin",
		Timezone: "UTC",
	}); err != nil {
		return fmt.Errorf("seed admin: create org: %w", err)
	}

	hash, err := auth.HashAPIKey(adminAPIKey)
	if err != nil {
		return fmt.Errorf("seed admin: hash key: %w", err)
	}

	if err := h.db.PutAPIKey(ctx, storage.APIKeyRecord{
		ID:        adminKeyID,
		OrgID:     adminOrgID,
		Role:      auth.RoleAdmin,
		KeyHash:   hash,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("seed admin: create api key: %w", err)
	}

	h.logger.Info("seeded initial admin api key", "key_id", adminKeyID)
	return nil
}

// HandleHealth reports liveness. Always 200 if the process is serving.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// HandleConfig reports non-sensitive feature flags for any UI consuming this API.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"version": h.version})
}

// HandleOpenAPISpec serves the embedded OpenAPI document.
func (h *Handlers) HandleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(h.openAPISpec)
}

// HandleAuthToken issues a JWT for a principal authenticated via ApiKey
// credentials. A caller exchanges a long-lived API key for a short-lived
// bearer token; MCP/UI clients that hold a JWT skip this and call /v1/*
// directly with Bearer auth.
func (h *Handlers) HandleAuthToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKeyID string `json:"api_key_id"`
		APIKey   string `json:"api_key"`
	}
	if err := decodeJSON(r, &req, h.maxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, httpapi.ErrCodeInvalidInput, "malformed request body")
		return
	}

	keyID, err := uuid.Parse(req.APIKeyID)
	if err != nil {
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, httpapi.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	rec, err := h.db.GetAPIKey(r.Context(), keyID)
	if err != nil {
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, httpapi.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	valid, verr := auth.VerifyAPIKey(req.APIKey, rec.KeyHash)
	if verr != nil || !valid {
		writeError(w, r, http.StatusUnauthorized, httpapi.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	token, exp, err := h.jwtMgr.IssueToken(auth.Principal{ID: rec.ID.String(), OrgID: rec.OrgID, Role: rec.Role})
	if err != nil {
		h.writeInternalError(w, r, "failed to issue token", err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"access_token": token,
		"expires_at":   exp,
		"token_type":   "Bearer",
	})
}

// solveRequest is the body of POST /v1/solve. OrgID in the body must match
// the caller's token scope; the context is assembled from storage for the
// given range.
type solveRequest struct {
	OrgID           string `json:"org_id"`
	RangeStart      string `json:"range_start"`
	RangeEnd        string `json:"range_end"`
	Mode            string `json:"mode"`
	MinimizeChanges bool   `json:"minimize_changes"`
}

// HandleSolve loads a context for the requested range, solves it, persists
// the resulting bundle, and returns it.
func (h *Handlers) HandleSolve(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req solveRequest
	if err := decodeJSON(r, &req, h.maxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, httpapi.ErrCodeInvalidInput, "malformed request body")
		return
	}
	if err := authz.Require(claims, req.OrgID, auth.RoleScheduler); err != nil {
		writeError(w, r, http.StatusForbidden, httpapi.ErrCodeForbidden, err.Error())
		return
	}

	from, to, err := parseRequestRange(req.RangeStart, req.RangeEnd)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, httpapi.ErrCodeInvalidInput, err.Error())
		return
	}

	mode := model.ModeStrict
	if req.Mode == string(model.ModeRelaxed) {
		mode = model.ModeRelaxed
	}

	sc, err := h.db.LoadSolveContext(r.Context(), req.OrgID, from, to, mode)
	if err != nil {
		h.writeInternalError(w, r, "failed to load solve context", err)
		return
	}
	sc.MinimizeChanges = req.MinimizeChanges
	if req.MinimizeChanges {
		if prev, ok, perr := h.db.LatestSolution(r.Context(), req.OrgID); perr == nil && ok {
			bundle := prev.Bundle
			sc.Previous = &bundle
		}
	}

	if err := sc.Validate(); err != nil {
		var cfgErr *model.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, r, http.StatusUnprocessableEntity, httpapi.ErrCodeInvalidInput, cfgErr.Error())
			return
		}
		h.writeInternalError(w, r, "unexpected validation error", err)
		return
	}

	g := solver.NewGreedyHeuristic()
	if err := g.BuildModel(sc); err != nil {
		h.writeInternalError(w, r, "failed to build solve model", err)
		return
	}
	bundle, err := g.SolveContext(r.Context())
	if err != nil {
		h.writeInternalError(w, r, "solve failed", err)
		return
	}

	id, err := h.db.PutSolution(r.Context(), req.OrgID, bundle)
	if err != nil {
		h.writeInternalError(w, r, "failed to persist solution", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"solution_id": id,
		"bundle":      bundle,
	})
}

// parseRequestRange parses RFC3339 range_start/range_end strings.
func parseRequestRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range_start must be RFC3339: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range_end must be RFC3339: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("range_start must precede range_end")
	}
	return start, end, nil
}

// solutionAndOrg fetches a solution record, requiring it to match an org
// the caller may access. query_param "org_id" identifies which org's
// solution namespace to search, since solution ids alone don't reveal the
// tenant without a lookup.
func (h *Handlers) solutionAndOrg(w http.ResponseWriter, r *http.Request) (storage.SolutionRecord, bool) {
	claims := ClaimsFromContext(r.Context())
	orgID := r.URL.Query().Get("org_id")

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, httpapi.ErrCodeInvalidInput, "invalid solution id")
		return storage.SolutionRecord{}, false
	}
	if err := authz.Require(claims, orgID, auth.RoleViewer); err != nil {
		writeError(w, r, http.StatusForbidden, httpapi.ErrCodeForbidden, err.Error())
		return storage.SolutionRecord{}, false
	}

	rec, err := h.db.GetSolution(r.Context(), orgID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, httpapi.ErrCodeNotFound, "solution not found")
			return storage.SolutionRecord{}, false
		}
		h.writeInternalError(w, r, "failed to load solution", err)
		return storage.SolutionRecord{}, false
	}
	return rec, true
}

// HandleGetSolution returns a previously solved bundle by id.
func (h *Handlers) HandleGetSolution(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.solutionAndOrg(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// HandleDiffSolutions compares two persisted solutions belonging to the
// same org and returns the structural diff.
func (h *Handlers) HandleDiffSolutions(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	orgID := r.URL.Query().Get("org_id")
	if err := authz.Require(claims, orgID, auth.RoleViewer); err != nil {
		writeError(w, r, http.StatusForbidden, httpapi.ErrCodeForbidden, err.Error())
		return
	}

	oldID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, httpapi.ErrCodeInvalidInput, "invalid solution id")
		return
	}
	newID, err := uuid.Parse(r.PathValue("other_id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, httpapi.ErrCodeInvalidInput, "invalid other_id")
		return
	}

	oldRec, err := h.db.GetSolution(r.Context(), orgID, oldID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, httpapi.ErrCodeNotFound, "solution not found")
		return
	}
	newRec, err := h.db.GetSolution(r.Context(), orgID, newID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, httpapi.ErrCodeNotFound, "other solution not found")
		return
	}

	writeJSON(w, r, http.StatusOK, diff.Compute(oldRec.Bundle, newRec.Bundle))
}

// HandleExportSolution renders a solution in the requested format, selected
// by the {format} path segment (json, csv, ics).
func (h *Handlers) HandleExportSolution(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.solutionAndOrg(w, r)
	if !ok {
		return
	}

	switch r.PathValue("format") {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		_ = export.JSON(w, rec.Bundle)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, rec.ID))
		_ = export.CSV(w, rec.Bundle)
	case "ics":
		w.Header().Set("Content-Type", "text/calendar")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ics"`, rec.ID))
		_ = export.ICS(w, rec.Bundle)
	default:
		writeError(w, r, http.StatusBadRequest, httpapi.ErrCodeInvalidInput, "format must be json, csv, or ics")
	}
}
