package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dzikrimr/tugasmk/config"
	"github.com/dzikrimr/tugasmk/model"
)

func TestRecognizerServiceRecognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/ner" {
			t.Errorf("Expected /ner, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Error("Expected Authorization header")
		}

		var req recognizeRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text == "" {
			t.Error("Expected non-empty text in request")
		}

		json.NewEncoder(w).Encode(recognizeResponse{
			Entities: map[string][]string{
				"ORG": {"Universitas Kadiri"},
				"PER": {"Eko Winarti"},
				"LOC": {"Kediri"},
			},
		})
	}))
	defer server.Close()

	cfg := &config.NERConfig{APIURL: server.URL, APIToken: "test-token", TimeoutSeconds: 5}
	svc := NewRecognizerService(cfg)

	text := "Kontrak senilai Rp 3.500.000 berlaku sejak 19 November 2019 sampai 20 November 2019 selama 2 hari"
	entities, err := svc.Recognize(context.Background(), text)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entities[model.CategoryOrg]) != 1 || entities[model.CategoryOrg][0] != "Universitas Kadiri" {
		t.Errorf("Unexpected ORG entities: %v", entities[model.CategoryOrg])
	}
	if len(entities[model.CategoryMoney]) == 0 || entities[model.CategoryMoney][0] != "Rp 3.500.000" {
		t.Errorf("Expected regex money extraction, got %v", entities[model.CategoryMoney])
	}
	if len(entities[model.CategoryDate]) != 2 {
		t.Errorf("Expected 2 regex dates, got %v", entities[model.CategoryDate])
	}
	if len(entities[model.CategoryTime]) != 1 || entities[model.CategoryTime][0] != "2 hari" {
		t.Errorf("Expected duration '2 hari', got %v", entities[model.CategoryTime])
	}
}

func TestRecognizerServiceMergesRemoteAndRegex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recognizeResponse{
			Entities: map[string][]string{
				"MONEY": {"Rp 100"},
			},
		})
	}))
	defer server.Close()

	cfg := &config.NERConfig{APIURL: server.URL, TimeoutSeconds: 5}
	svc := NewRecognizerService(cfg)

	entities, err := svc.Recognize(context.Background(), "harga Rp 200.000")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	money := entities[model.CategoryMoney]
	if len(money) != 2 {
		t.Fatalf("Expected remote + regex money entries, got %v", money)
	}
}

func TestRecognizerServiceAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recognizeResponse{Error: "model loading"})
	}))
	defer server.Close()

	cfg := &config.NERConfig{APIURL: server.URL, TimeoutSeconds: 5}
	svc := NewRecognizerService(cfg)

	_, err := svc.Recognize(context.Background(), "teks")
	if err == nil {
		t.Error("Expected error for API error response")
	}
}

func TestRecognizerServiceHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.NERConfig{APIURL: server.URL, TimeoutSeconds: 5}
	svc := NewRecognizerService(cfg)

	_, err := svc.Recognize(context.Background(), "teks")
	if err == nil {
		t.Error("Expected error for 500 response")
	}
}

func TestMoneyRegex(t *testing.T) {
	matches := moneyRe.FindAllString("total Rp 1.500.000 dan uang muka Rp500.000", -1)
	if len(matches) != 2 {
		t.Fatalf("Expected 2 money matches, got %v", matches)
	}
	if matches[0] != "Rp 1.500.000" {
		t.Errorf("Unexpected first match: %q", matches[0])
	}
	if matches[1] != "Rp500.000" {
		t.Errorf("Unexpected second match: %q", matches[1])
	}
}

func TestDateRegex(t *testing.T) {
	text := "mulai 19 november 2019 hingga 20 Desember 2020, bukan 32 Foo 2019"
	matches := dateRe.FindAllString(text, -1)
	if len(matches) != 2 {
		t.Fatalf("Expected 2 date matches, got %v", matches)
	}
}

func TestDurationRegex(t *testing.T) {
	text := "berlaku 12 bulan atau 90 hari, bukan 5 minggu"
	matches := durationRe.FindAllString(text, -1)
	if len(matches) != 2 {
		t.Fatalf("Expected 2 duration matches, got %v", matches)
	}
}
