// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/tradeboard/internal/adapters/repository"
)

// CountryDependencies defines the interface for country lookups.
type CountryDependencies interface {
	Country(ctx context.Context, name string) (repository.Record, error)
}

// CountryHandler handles country requests.
type CountryHandler struct {
	deps CountryDependencies
}

// NewCountryHandler creates a new country handler.
func NewCountryHandler(deps CountryDependencies) *CountryHandler {
	return &CountryHandler{deps: deps}
}

// HandleGetCountry handles GET /countries/{name} requests.
func (h *CountryHandler) HandleGetCountry(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_country"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /countries/
	name := strings.TrimPrefix(r.URL.Path, "/countries/")
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rec, err := h.deps.Country(r.Context(), name)
	if err != nil {
		writeLookupError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
