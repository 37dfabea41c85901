// Zaparoo Indexer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Indexer.
//
// Zaparoo Indexer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Indexer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Indexer.  If not, see <http://www.gnu.org/licenses/>.

// Package validation checks API request parameters using go-playground
// validator, with a few custom tags for catalog browsing.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingParams = errors.New("missing params")
	ErrInvalidParams = errors.New("invalid params")
)

const (
	minYear = 1870
	maxYear = 2100
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("letter", validateLetter)
	_ = v.RegisterValidation("year", validateYear)
	v.RegisterStructValidation(validateBrowse, models.BrowseParams{})

	return &Validator{validate: v}
}

// DefaultValidator is a shared validator instance for API use.
var DefaultValidator = NewValidator()

// Validate validates a struct and returns an *Error listing every failing
// field.
func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateAndUnmarshal decodes a JSON body into dest and validates it.
func ValidateAndUnmarshal[T any](body []byte, dest *T) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return ErrMissingParams
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return ErrInvalidParams
	}
	return DefaultValidator.Validate(dest)
}

// validateLetter accepts a single letter or "#", the buckets of the
// alphabetic filter.
func validateLetter(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	upper := strings.ToUpper(strings.TrimSpace(val))
	return len(upper) == 1 && strings.Contains(catalog.Letters, upper)
}

func validateYear(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	y, err := strconv.Atoi(val)
	return err == nil && y >= minYear && y <= maxYear
}

// validateBrowse checks Value against the format its Filter expects.
func validateBrowse(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(models.BrowseParams)
	if !ok || p.Value == "" {
		return
	}
	switch catalog.Filter(p.Filter) {
	case catalog.FilterAlpha:
		if err := sl.Validator().Var(p.Value, "letter"); err != nil {
			sl.ReportError(p.Value, "Value", "Value", "letter", "")
		}
	case catalog.FilterYear:
		if err := sl.Validator().Var(p.Value, "year"); err != nil {
			sl.ReportError(p.Value, "Value", "Value", "year", "")
		}
	case catalog.FilterAll, catalog.FilterPopular, catalog.FilterGenre:
	}
}
