// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ocr extracts printed fields from identity document images using a
// Gemini model in JSON response mode. Extraction is best effort: callers
// treat the fields as hints and never fail a registration on an OCR error.
package ocr
