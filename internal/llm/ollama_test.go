package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	var gotReq generateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]string{"response": "h1. Lesson\n..."})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "codellama:7b", Options{})

	out, err := c.Generate(context.Background(), "write a lesson")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "h1. Lesson\n..." {
		t.Errorf("unexpected generation output: %q", out)
	}

	if gotReq.Model != "codellama:7b" {
		t.Errorf("expected model tag in request, got %q", gotReq.Model)
	}
	if gotReq.Prompt != "write a lesson" {
		t.Errorf("expected prompt in request, got %q", gotReq.Prompt)
	}
	if gotReq.Stream {
		t.Error("streaming must be disabled")
	}
}

func TestGenerate_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "codellama:7b", Options{})

	_, err := c.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error should carry status and body, got %v", err)
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "codellama:7b", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Generate(ctx, "prompt"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
