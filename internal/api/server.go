package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/claim-verifier/internal/models"
	"github.com/example/claim-verifier/internal/ocr"
)

// Agent is the verification entrypoint the API depends on.
type Agent interface {
	Run(ctx context.Context, in *models.ClaimInput) (*models.AgentOutput, error)
	Subscribe(requestID string) (<-chan []byte, func())
}

type Server struct {
	Agent     Agent
	Extractor ocr.Extractor
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/analyze_claims", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var in models.ClaimInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if err := in.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if in.RequestID == "" {
			in.RequestID = uuid.NewString()
		}
		out, err := s.Agent.Run(r.Context(), &in)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, out)
	})

	mux.HandleFunc("/api/analyze_post", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			PostURL   string         `json:"post_url"`
			Caption   string         `json:"caption"`
			AltText   string         `json:"alt_text"`
			MaxImages int            `json:"max_images"`
			Claims    []string       `json:"claims"`
			Metadata  map[string]any `json:"metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if req.PostURL == "" {
			respondError(w, http.StatusBadRequest, fmt.Errorf("post_url is required"))
			return
		}
		if s.Extractor == nil {
			respondError(w, http.StatusServiceUnavailable, fmt.Errorf("no OCR extractor configured"))
			return
		}
		extracted, err := s.Extractor.Extract(r.Context(), req.PostURL, req.Caption, req.AltText, req.MaxImages)
		if err != nil {
			respondError(w, http.StatusBadGateway, fmt.Errorf("extract post text: %w", err))
			return
		}
		// The merged text block becomes the claim when none were supplied,
		// and always rides along as context for the agent.
		claims := req.Claims
		if len(claims) == 0 {
			merged := strings.TrimSpace(extracted.MergedText)
			if merged == "" {
				respondError(w, http.StatusUnprocessableEntity, fmt.Errorf("no text extracted from post"))
				return
			}
			claims = []string{merged}
		}
		in := models.ClaimInput{
			Claims:    claims,
			RequestID: uuid.NewString(),
			Context: &models.AgentContext{
				Caption:  req.Caption,
				OCRText:  extracted.OCRText,
				URLs:     []string{req.PostURL},
				Metadata: req.Metadata,
			},
		}
		out, err := s.Agent.Run(r.Context(), &in)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, out)
	})

	mux.HandleFunc("/api/events/", func(w http.ResponseWriter, r *http.Request) {
		// path: /api/events/{request_id}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		requestID := r.URL.Path[len("/api/events/"):]
		if requestID == "" {
			http.NotFound(w, r)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			respondError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		ch, unsubscribe := s.Agent.Subscribe(requestID)
		defer unsubscribe()
		for {
			select {
			case <-r.Context().Done():
				return
			case b, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", b)
				flusher.Flush()
			}
		}
	})
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
