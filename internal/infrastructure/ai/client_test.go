package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			Model string `json:"model"`
			Input string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Input != "new laptops" || req.Model == "" {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key"})
	v, err := c.Embed(context.Background(), "new laptops")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != 3 || v[0] != 0.1 {
		t.Fatalf("vector = %v", v)
	}
}

func TestClient_Embed_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key"})
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty embedding data")
	}
}

func TestClient_Summarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		content, _ := json.Marshal(map[string]any{
			"agreeing":    []string{"a1", "a2", "a3", "a4"},
			"disagreeing": []string{"d1"},
		})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": string(content)}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key"})
	s, err := c.Summarize(context.Background(), []string{"Alice: ship it", "Bob: too pricey"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(s.Agreeing) != 3 {
		t.Fatalf("agreeing not capped at 3: %v", s.Agreeing)
	}
	if len(s.Disagreeing) != 1 || s.Disagreeing[0] != "d1" {
		t.Fatalf("disagreeing = %v", s.Disagreeing)
	}
}

func TestClient_Summarize_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "not json at all"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key"})
	if _, err := c.Summarize(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected parse error for non-JSON content")
	}
}

func TestClient_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key"})
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestClient_IsConfigured(t *testing.T) {
	if NewClient(Config{}).IsConfigured() {
		t.Fatal("zero config reported configured")
	}
	if !NewClient(Config{BaseURL: "https://api", APIKey: "k"}).IsConfigured() {
		t.Fatal("full config reported unconfigured")
	}
}
