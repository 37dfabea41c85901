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

package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error lists every parameter that failed validation.
type Error struct {
	Fields []FieldError
}

// FieldError is one failed rule, with a message fit for an API client.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	for i := range e.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Fields[i].Message)
	}
	return b.String()
}

// Has reports whether field failed any rule.
func (e *Error) Has(field string) bool {
	for i := range e.Fields {
		if strings.EqualFold(e.Fields[i].Field, field) {
			return true
		}
	}
	return false
}

func NewError(errs validator.ValidationErrors) *Error {
	out := &Error{Fields: make([]FieldError, 0, len(errs))}
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		msg := field + " failed " + fe.Tag() + " validation"
		if format, ok := messages[fe.Tag()]; ok {
			msg = format(field, fe.Param())
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: msg})
	}
	return out
}

var messages = map[string]func(field, param string) string{
	"required": func(field, _ string) string {
		return field + " is required"
	},
	"required_if": func(field, _ string) string {
		return field + " is required"
	},
	"letter": func(field, _ string) string {
		return field + " must be A-Z or #"
	},
	"year": func(field, _ string) string {
		return fmt.Sprintf("%s must be a year between %d and %d", field, minYear, maxYear)
	},
	"startswith": func(field, param string) string {
		return fmt.Sprintf("%s must start with %q", field, param)
	},
	"oneof": func(field, param string) string {
		return fmt.Sprintf("%s must be one of: %s", field, param)
	},
	"max": func(field, param string) string {
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	},
	"gte": func(field, param string) string {
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	},
}
