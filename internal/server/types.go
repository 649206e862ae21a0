// Package server exposes the inference pipeline over HTTP and WebSocket.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scalevision/scaleread/internal/pipeline"
	"github.com/scalevision/scaleread/internal/utils"
)

// pipelineInterface defines the methods the server needs from a pipeline.
type pipelineInterface interface {
	Process(img *utils.Image) (*pipeline.InferenceResult, error)
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline     pipelineInterface
	corsOrigin   string
	maxUploadMB  int64
	maxImageSize int
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	MaxImageSize   int
	PipelineConfig pipeline.Config
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// DetectionBox is a detected display region in source-image coordinates.
type DetectionBox struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
}

// Fragment is one recognized text region.
type Fragment struct {
	Text          string  `json:"text"`
	DetConfidence float64 `json:"det_confidence"`
	RecConfidence float64 `json:"rec_confidence"`
}

// ReadResult is the API view of one inference outcome.
type ReadResult struct {
	Combined   string         `json:"combined"`
	Value      *string        `json:"value"`
	Unit       *string        `json:"unit"`
	Fragments  []Fragment     `json:"fragments"`
	Boxes      []DetectionBox `json:"boxes"`
	Confidence float64        `json:"confidence"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	DurationMs int64          `json:"duration_ms"`
}

// ReadResponse wraps a read result or an error message.
type ReadResponse struct {
	Success bool        `json:"success"`
	Result  *ReadResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewServer builds the pipeline from config and wraps it in a server.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().WithConfig(config.PipelineConfig).Build()
	if err != nil {
		return nil, err
	}
	return newServer(pl, config), nil
}

// NewServerWithPipeline wraps an existing pipeline, used by tests.
func NewServerWithPipeline(pl pipelineInterface, config Config) *Server {
	return newServer(pl, config)
}

func newServer(pl pipelineInterface, config Config) *Server {
	maxUpload := config.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 20
	}
	maxImage := config.MaxImageSize
	if maxImage <= 0 {
		maxImage = utils.DefaultMaxDimension
	}
	return &Server{
		pipeline:     pl,
		corsOrigin:   config.CORSOrigin,
		maxUploadMB:  maxUpload,
		maxImageSize: maxImage,
	}
}

// Close releases pipeline resources.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/v1/read", s.corsMiddleware(s.readImageHandler))
	mux.HandleFunc("/v1/stream", s.streamHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// resultFromInference converts a pipeline result into the API shape.
func resultFromInference(res *pipeline.InferenceResult, width, height int) *ReadResult {
	out := &ReadResult{
		Combined:   res.Combined,
		Value:      res.Value,
		Unit:       res.Unit,
		Fragments:  make([]Fragment, len(res.Fragments)),
		Boxes:      make([]DetectionBox, len(res.Boxes)),
		Confidence: res.RecConfidence,
		Width:      width,
		Height:     height,
		DurationMs: res.Duration.Milliseconds(),
	}
	for i, f := range res.Fragments {
		out.Fragments[i] = Fragment{
			Text:          f.Text,
			DetConfidence: f.DetConfidence,
			RecConfidence: f.RecConfidence,
		}
	}
	for i, b := range res.Boxes {
		out.Boxes[i] = DetectionBox{
			X1:         b.Box.MinX,
			Y1:         b.Box.MinY,
			X2:         b.Box.MaxX,
			Y2:         b.Box.MaxY,
			Confidence: b.Confidence,
		}
	}
	return out
}
