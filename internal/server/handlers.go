package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/utils"
	"github.com/scalevision/scaleread/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("encoding health response", "error", err)
	}
}

// readImageHandler runs the pipeline on an uploaded image.
func (s *Server) readImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := utils.DecodeImageMax(file, s.maxImageSize)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Pipeline not available", http.StatusServiceUnavailable)
		return
	}
	res, err := s.pipeline.Process(img)
	if err != nil {
		readRequestsTotal.WithLabelValues("http", "error").Inc()
		status := http.StatusInternalServerError
		var shapeErr *model.ShapeError
		if errors.As(err, &shapeErr) {
			status = http.StatusBadGateway
		}
		slog.Error("read request failed", "error", err)
		s.writeErrorResponse(w, err.Error(), status)
		return
	}

	result := resultFromInference(res, img.Width, img.Height)
	observeResult("http", result)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ReadResponse{Success: true, Result: result}); err != nil {
		slog.Error("encoding read response", "error", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ReadResponse{Success: false, Error: message}); err != nil {
		slog.Error("encoding error response", "error", err)
	}
}
