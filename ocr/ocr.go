// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/models"
)

// Extractor reads printed fields from an identity document image. Results are
// best effort and may be partial.
type Extractor interface {
	ExtractFields(ctx context.Context, image []byte, docType string) (models.OCRFields, error)
}

const prompt = `You are reading an Indian identity document (Aadhaar card, voter ID/EPIC card, passport or driving licence).
Return a single JSON object with these string keys and nothing else:
"name", "dob", "id_number", "address", "email", "phone".
Use YYYY-MM-DD for dob. Use an empty string for any field that is not printed on the document.`

// GeminiExtractor asks a Gemini model to transcribe the document.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error initializing Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	temp := float32(0)
	model.Temperature = &temp
	model.ResponseMIMEType = "application/json"

	return &GeminiExtractor{client: client, model: model}, nil
}

func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}

func (g *GeminiExtractor) ExtractFields(ctx context.Context, image []byte, docType string) (models.OCRFields, error) {
	format, ok := strings.CutPrefix(docType, "image/")
	if !ok {
		return models.OCRFields{}, fmt.Errorf("ocr needs an image, got %s: %w", docType, apperr.ErrInvalidInput)
	}

	resp, err := g.model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(prompt))
	if err != nil {
		return models.OCRFields{}, fmt.Errorf("gemini: %v: %w", err, apperr.ErrServiceUnavailable)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return models.OCRFields{}, fmt.Errorf("gemini returned no candidates: %w", apperr.ErrServiceUnavailable)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return ParseFields(sb.String())
}

// ParseFields decodes a model reply, tolerating markdown code fences.
func ParseFields(reply string) (models.OCRFields, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return models.OCRFields{}, fmt.Errorf("empty ocr reply: %w", apperr.ErrServiceUnavailable)
	}

	var f models.OCRFields
	if err := json.Unmarshal([]byte(reply), &f); err != nil {
		return models.OCRFields{}, fmt.Errorf("decode ocr reply: %v: %w", err, apperr.ErrServiceUnavailable)
	}

	f.Name = strings.TrimSpace(f.Name)
	f.DOB = strings.TrimSpace(f.DOB)
	f.IDNumber = strings.TrimSpace(f.IDNumber)
	f.Address = strings.TrimSpace(f.Address)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	return f, nil
}
