package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/adeotasks/adeo-api/internal/api/shared"
	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// getPathID extracts a positive integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handlePathID extracts the {id} path parameter, writing an error response
// when it is missing or malformed.
func handlePathID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	id, err := getPathID(r, "id")
	if err != nil {
		log.Debug("invalid path parameter", slog.String("value", chi.URLParam(r, "id")))
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

// decodeAndValidate parses the JSON body into req and validates it, writing
// a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}

	return true
}
