package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mobilehub/internal/middleware"
	"mobilehub/internal/services"

	"github.com/gorilla/mux"
)

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, middleware.ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithServiceError maps service errors onto HTTP status codes.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, services.ErrEmptyCart):
		respondWithError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrCartItemNotFound),
		errors.Is(err, services.ErrUploadNotFound):
		respondWithError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "Invalid ID")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return 0, false
	}
	return userID, true
}
