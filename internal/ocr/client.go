package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Extraction is the text pulled out of a social-media post by the external
// OCR collaborator: caption plus deduplicated OCR lines merged into one block.
type Extraction struct {
	URL        string   `json:"url"`
	Caption    string   `json:"caption"`
	OCRText    string   `json:"ocr_text"`
	MergedText string   `json:"merged_text"`
	ImageURLs  []string `json:"image_urls,omitempty"`
	OCRErrors  []string `json:"ocr_errors,omitempty"`
}

// Extractor is the OCR collaborator interface; the pipeline itself lives in a
// separate service.
type Extractor interface {
	Extract(ctx context.Context, postURL, caption, altText string, maxImages int) (*Extraction, error)
}

// HTTPExtractor calls the extractor service.
type HTTPExtractor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewFromEnv returns an extractor when OCR_BASE_URL is configured, nil
// otherwise; the post endpoint is unavailable without one.
func NewFromEnv() Extractor {
	base := strings.TrimRight(os.Getenv("OCR_BASE_URL"), "/")
	if base == "" {
		return nil
	}
	return &HTTPExtractor{BaseURL: base}
}

func (e *HTTPExtractor) Extract(ctx context.Context, postURL, caption, altText string, maxImages int) (*Extraction, error) {
	if maxImages <= 0 {
		maxImages = 3
	}
	body, _ := json.Marshal(map[string]any{
		"post_url":   postURL,
		"caption":    caption,
		"alt_text":   altText,
		"max_images": maxImages,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	client := e.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eresp map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&eresp)
		return nil, fmt.Errorf("ocr status %d: %v", resp.StatusCode, eresp)
	}
	var out Extraction
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
