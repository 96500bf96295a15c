package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/blob"
)

const maxUploadBytes = 5 << 20 // 5 MiB

// handleUpload accepts a multipart image and stores it in the blob store.
// The returned URL is what message senders put in image_url.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		s.respondError(w, http.StatusBadRequest, "only image uploads are accepted")
		return
	}

	id, err := s.blobs.Put(data, contentType)
	if err != nil {
		s.logger.Error("Failed to store upload", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{
		"id":  id,
		"url": "/api/uploads/" + id,
	})
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, contentType, err := s.blobs.Get(id)
	if err == blob.ErrNotFound {
		s.respondError(w, http.StatusNotFound, "upload not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to read upload",
			zap.Error(err),
			zap.String("id", id))
		s.respondError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Failed to write upload response", zap.Error(err))
	}
}
