// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/voteguard/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v's validate tags. Failures wrap apperr.ErrInvalidInput and
// name every offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Namespace() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), apperr.ErrInvalidInput)
}

// NormalizeIDNumber canonicalizes an Aadhaar or EPIC number: upper case with
// spaces and hyphens removed. Stored, compared and looked-up ID numbers all
// go through it.
func NormalizeIDNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

// Normalize canonicalizes the claimed ID numbers in place.
func (c *Claims) Normalize() {
	c.AadhaarNumber = NormalizeIDNumber(c.AadhaarNumber)
	c.EPICNumber = NormalizeIDNumber(c.EPICNumber)
}
