package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

// handleGenerateImage produces an AI image for a prompt and stores it like an
// upload; the returned URL goes into image_url on a subsequent message send.
func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		s.respondError(w, http.StatusBadRequest, "prompt required")
		return
	}

	data, err := s.images.Generate(r.Context(), prompt)
	if err != nil {
		s.logger.Error("Failed to generate image", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, "image generation failed")
		return
	}

	id, err := s.blobs.Put(data, "image/png")
	if err != nil {
		s.logger.Error("Failed to store generated image", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{
		"id":  id,
		"url": "/api/uploads/" + id,
	})
}
