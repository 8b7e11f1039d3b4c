package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/dzikrimr/tugasmk/config"
	"github.com/dzikrimr/tugasmk/model"
)

// RecognizerService combines a remote IndoBERT NER sidecar with local regex
// extractors. The model covers ORG/PER/LOC; money figures, dates, and
// durations are more reliably picked out of Indonesian contract prose by
// pattern matching.
type RecognizerService struct {
	config     *config.NERConfig
	httpClient *http.Client
}

type recognizeRequest struct {
	Text string `json:"text"`
}

type recognizeResponse struct {
	Entities map[string][]string `json:"entities"`
	Error    string              `json:"error,omitempty"`
}

var (
	moneyRe    = regexp.MustCompile(`Rp\s?[\d.,]+`)
	dateRe     = regexp.MustCompile(`(?i)\b(\d{1,2}\s(?:Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember)\s\d{4})\b`)
	durationRe = regexp.MustCompile(`(?i)\b(\d+\s(?:hari|bulan|tahun))\b`)
)

func NewRecognizerService(cfg *config.NERConfig) *RecognizerService {
	return &RecognizerService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Recognize extracts entities from one page of text. The remote categories
// are merged with the regex-derived MONEY/DATE/TIME results; deduplication
// across pages happens later in Aggregate.
func (s *RecognizerService) Recognize(ctx context.Context, text string) (model.EntitySet, error) {
	remote, err := s.recognizeRemote(ctx, text)
	if err != nil {
		return nil, err
	}

	entities := make(model.EntitySet, len(model.Categories))
	for _, category := range model.Categories {
		entities[category] = remote[category]
	}

	entities[model.CategoryMoney] = append(entities[model.CategoryMoney], moneyRe.FindAllString(text, -1)...)
	entities[model.CategoryDate] = append(entities[model.CategoryDate], dateRe.FindAllString(text, -1)...)
	entities[model.CategoryTime] = append(entities[model.CategoryTime], durationRe.FindAllString(text, -1)...)

	return entities, nil
}

func (s *RecognizerService) recognizeRemote(ctx context.Context, text string) (map[string][]string, error) {
	reqBody := recognizeRequest{Text: text}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/ner", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NER API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result recognizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}

	if result.Error != "" {
		return nil, fmt.Errorf("NER API error: %s", result.Error)
	}

	return result.Entities, nil
}
