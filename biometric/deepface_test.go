// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package biometric

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/voteguard/apperr"
)

func newTestClient(url string, retries int) *DeepFaceClient {
	c := NewDeepFaceClient(DeepFaceConfig{BaseURL: url, Timeout: 2 * time.Second, Retries: retries})
	c.backoff = []time.Duration{time.Millisecond}
	return c
}

func TestDeepFaceExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/represent" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req representRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if !strings.HasPrefix(req.Img, "data:") || !strings.Contains(req.Img, ";base64,") {
			t.Errorf("image should be a data URI, got %q", req.Img[:min(len(req.Img), 30)])
		}
		if req.ModelName != "Facenet" {
			t.Errorf("expected default model Facenet, got %q", req.ModelName)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"embedding":[0.1,0.2,0.3],"face_confidence":0.98}]}`))
	}))
	defer srv.Close()

	emb, err := newTestClient(srv.URL, 0).Extract(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(emb) != 3 || emb[2] != 0.3 {
		t.Errorf("unexpected embedding %v", emb)
	}
}

func TestDeepFaceNoFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Face could not be detected in numpy array."}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Extract(context.Background(), []byte("img"))
	if !errors.Is(err, ErrNoFace) {
		t.Fatalf("expected ErrNoFace, got %v", err)
	}
	if errors.Is(err, apperr.ErrServiceUnavailable) {
		t.Error("no-face must not look like an outage")
	}
}

func TestDeepFaceRetriesThenUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Extract(context.Background(), []byte("img"))
	if !errors.Is(err, apperr.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestDeepFaceRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"results":[{"embedding":[1,2]}]}`))
	}))
	defer srv.Close()

	emb, err := newTestClient(srv.URL, 1).Extract(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(emb) != 2 {
		t.Errorf("unexpected embedding %v", emb)
	}
}

func TestDeepFaceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, 0).Extract(context.Background(), []byte("img"))
	if !errors.Is(err, apperr.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestDeepFaceEmptyImage(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:0", 0).Extract(context.Background(), nil)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeepFaceMalformedReplyIsUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html>502 from upstream proxy</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).Extract(context.Background(), []byte("img"))
	if !errors.Is(err, apperr.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if errors.Is(err, ErrNoFace) || errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("an unreadable reply must not blame the image: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected a retry, got %d attempts", calls.Load())
	}
}

func TestDeepFaceEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Extract(context.Background(), []byte("img"))
	if !errors.Is(err, ErrNoFace) {
		t.Fatalf("expected ErrNoFace, got %v", err)
	}
}
