// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package biometric

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/logger"
)

var ErrNoFace = fmt.Errorf("no face detected in image: %w", apperr.ErrInvalidInput)

// Extractor turns a face image into an embedding.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([]float64, error)
}

type DeepFaceConfig struct {
	BaseURL  string
	Model    string
	Detector string
	Timeout  time.Duration
	Retries  int
}

// DeepFaceClient calls the /represent endpoint of a DeepFace HTTP service.
type DeepFaceClient struct {
	cfg     DeepFaceConfig
	http    *http.Client
	backoff []time.Duration
}

type representRequest struct {
	Img              string `json:"img"`
	ModelName        string `json:"model_name,omitempty"`
	DetectorBackend  string `json:"detector_backend,omitempty"`
	EnforceDetection bool   `json:"enforce_detection"`
}

type representResponse struct {
	Results []struct {
		Embedding      []float64 `json:"embedding"`
		FaceConfidence float64   `json:"face_confidence"`
	} `json:"results"`
	Error string `json:"error"`
}

func NewDeepFaceClient(cfg DeepFaceConfig) *DeepFaceClient {
	if cfg.Model == "" {
		cfg.Model = "Facenet"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &DeepFaceClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		backoff: []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second},
	}
}

func (c *DeepFaceClient) Extract(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image: %w", apperr.ErrInvalidInput)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			wait := c.backoff[min(attempt-1, len(c.backoff)-1)]
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("deepface: %v: %w", ctx.Err(), apperr.ErrServiceUnavailable)
			case <-time.After(wait):
			}
		}

		embedding, err := c.represent(ctx, image)
		if err == nil {
			return embedding, nil
		}
		if !errors.Is(err, apperr.ErrServiceUnavailable) {
			return nil, err
		}
		lastErr = err
		logger.Warning("deepface attempt failed", "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *DeepFaceClient) represent(ctx context.Context, image []byte) ([]float64, error) {
	payload, err := json.Marshal(representRequest{
		Img:              "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image),
		ModelName:        c.cfg.Model,
		DetectorBackend:  c.cfg.Detector,
		EnforceDetection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode represent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/represent", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build represent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepface: %v: %w", err, apperr.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("deepface: read body: %v: %w", err, apperr.ErrServiceUnavailable)
	}

	var out representResponse
	decodeErr := json.Unmarshal(body, &out)

	// DeepFace answers 400 when enforce_detection finds no face.
	if resp.StatusCode == http.StatusBadRequest && decodeErr == nil &&
		strings.Contains(strings.ToLower(out.Error), "face could not be detected") {
		return nil, ErrNoFace
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("deepface: status %d: %w", resp.StatusCode, apperr.ErrServiceUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepface rejected image (status %d): %w", resp.StatusCode, apperr.ErrInvalidInput)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("deepface: malformed reply: %v: %w", decodeErr, apperr.ErrServiceUnavailable)
	}
	if len(out.Results) == 0 {
		return nil, ErrNoFace
	}
	if len(out.Results[0].Embedding) == 0 {
		return nil, fmt.Errorf("deepface returned empty embedding: %w", apperr.ErrServiceUnavailable)
	}

	return out.Results[0].Embedding, nil
}
