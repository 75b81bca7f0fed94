package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"mobilehub/internal/metrics"
	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 2 << 20

type UploadHandler struct {
	uploadService *services.UploadService
	recorder      metrics.Recorder
	logger        zerolog.Logger
}

func NewUploadHandler(uploadService *services.UploadService, recorder metrics.Recorder, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		recorder:      recorder,
		logger:        logger,
	}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(services.MaxUploadSize + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondWithError(w, http.StatusBadRequest, services.ErrUploadTooLarge.Error(), "")
			return
		}
		respondWithError(w, http.StatusBadRequest, "No file uploaded", err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No file uploaded", "multipart field 'image' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxUploadSize+1))
	if err != nil {
		h.logger.Error().Err(err).Msg("Reading upload failed")
		respondWithError(w, http.StatusBadRequest, "Failed to read file", "")
		return
	}

	url, err := h.uploadService.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	switch {
	case errors.Is(err, services.ErrUploadTooLarge), errors.Is(err, services.ErrInvalidUpload):
		h.logger.Warn().Err(err).Str("filename", header.Filename).Msg("Upload rejected")
		respondWithError(w, http.StatusBadRequest, err.Error(), "")
		return
	case err != nil:
		respondWithServiceError(w, err)
		return
	}

	h.recorder.RecordUpload(len(data))
	respondWithJSON(w, http.StatusOK, models.UploadResponse{ImageURL: url})
}

func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.uploadService.Open(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Security-Policy", "default-src 'none'")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
