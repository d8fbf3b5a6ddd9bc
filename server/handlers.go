package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vehicle-market/models"
	"vehicle-market/services"
	"vehicle-market/utils"
)

const userHeader = "X-User-ID"

// Handlers serves the search API over a Catalog.
type Handlers struct {
	catalog   *Catalog
	favorites *services.FavoritesService
	pageSize  int
	logger    *utils.Logger
}

func NewHandlers(catalog *Catalog, favorites *services.FavoritesService, pageSize int, logger *utils.Logger) *Handlers {
	if pageSize <= 0 {
		pageSize = services.DefaultPageSize
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Handlers{catalog: catalog, favorites: favorites, pageSize: pageSize, logger: logger}
}

type searchResponse struct {
	Vehicles   []models.Vehicle     `json:"vehicles"`
	Pagination models.Pagination    `json:"pagination"`
	Filters    models.FilterSummary `json:"filters"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListVehicles handles GET /vehicles: filter, sort, overlay favorites, page.
func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r.URL.Query(), h.pageSize)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.SearchRequests.Inc()
	if req.Sort != "" && !req.Sort.Valid() {
		h.logger.Debug("[http] Unknown sort key %q, keeping catalog order", req.Sort)
	}

	all, _ := h.catalog.Snapshot()
	matched := services.Filter(all, req.Filters, req.Query)
	sorted := services.Sort(matched, req.Sort)
	page, pagination := services.Paginate(sorted, req.Page, req.PerPage)
	page = h.favorites.Overlay(r.Context(), userID(r), page)

	respondJSON(w, http.StatusOK, searchResponse{
		Vehicles:   page,
		Pagination: pagination,
		Filters:    services.Summarize(req.Filters),
	})
}

// GetVehicle handles GET /vehicles/{id}.
func (h *Handlers) GetVehicle(w http.ResponseWriter, r *http.Request) {
	all, _ := h.catalog.Snapshot()
	v, ok := services.FindByID(all, chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	overlaid := h.favorites.Overlay(r.Context(), userID(r), []models.Vehicle{*v})
	respondJSON(w, http.StatusOK, overlaid[0])
}

// Refresh handles POST /refresh by running a full fetch.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Refresh(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"vehicles": n})
}

// AddFavorite handles PUT /favorites/{id}.
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.mutateFavorite(w, r, h.favorites.Add)
}

// RemoveFavorite handles DELETE /favorites/{id}.
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.mutateFavorite(w, r, h.favorites.Remove)
}

type favoriteOp func(ctx context.Context, userID, vehicleID string) error

func (h *Handlers) mutateFavorite(w http.ResponseWriter, r *http.Request, op favoriteOp) {
	vehicleID := chi.URLParam(r, "id")
	if err := op(r.Context(), userID(r), vehicleID); err != nil {
		h.favoriteError(w, r, vehicleID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite handles POST /favorites/{id}/toggle.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "id")
	on, err := h.favorites.Toggle(r.Context(), userID(r), vehicleID)
	if err != nil {
		h.favoriteError(w, r, vehicleID, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": vehicleID, "isFavorited": on})
}

func (h *Handlers) favoriteError(w http.ResponseWriter, r *http.Request, vehicleID string, err error) {
	if errors.Is(err, services.ErrNotAuthenticated) {
		writeJSONError(w, http.StatusUnauthorized, "missing "+userHeader+" header")
		return
	}
	h.logger.Error("[http] Favorite %s for %s failed: %v", vehicleID, userID(r), err)
	writeJSONError(w, http.StatusInternalServerError, "failed to update favorites")
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	_, fetchedAt := h.catalog.Snapshot()
	body := map[string]any{"status": "ok", "vehicles": h.catalog.Len()}
	if !fetchedAt.IsZero() {
		body["fetchedAt"] = fetchedAt.UTC().Format(time.RFC3339)
	}
	respondJSON(w, http.StatusOK, body)
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(userHeader))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
