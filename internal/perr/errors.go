/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package perr defines the platform's error taxonomy (spec §7). Every kind
// is a classification, not a distinct Go type, so callers can switch on
// Kind without a long type-assertion chain.
package perr

import "fmt"

// Kind classifies a PlatformError.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindBuild      Kind = "build"
	KindLoader     Kind = "loader"
	KindStorage    Kind = "storage"
	KindCancel     Kind = "cancel"
)

// PlatformError is the single error type surfaced by the core. Front-ends
// map Kind to a transport status code (spec §7).
type PlatformError struct {
	Kind    Kind
	Message string
	Stack   string
	err     error
}

func (e *PlatformError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

// Unwrap lets callers use errors.Is/errors.As against a wrapped cause.
func (e *PlatformError) Unwrap() error { return e.err }

func newErr(kind Kind, format string, args ...any) *PlatformError {
	return &PlatformError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a ValidationError (malformed input, slot mismatch, etc).
func Validation(format string, args ...any) *PlatformError {
	return newErr(KindValidation, format, args...)
}

// NotFound builds a NotFoundError for an absent tenant/worker/template.
func NotFound(kind string, id string) *PlatformError {
	return newErr(KindNotFound, "%s %q not found", kind, id)
}

// Conflict builds a ConflictError for unique-constraint violations.
func Conflict(format string, args ...any) *PlatformError {
	return newErr(KindConflict, format, args...)
}

// Build wraps a Bundler failure, optionally carrying a stack trace.
func Build(message, stack string) *PlatformError {
	return &PlatformError{Kind: KindBuild, Message: message, Stack: stack}
}

// Loader wraps a Loader cold-start failure.
func Loader(format string, args ...any) *PlatformError {
	return newErr(KindLoader, format, args...)
}

// Storage wraps an underlying transport/IO failure, preserving the cause.
func Storage(cause error) *PlatformError {
	if cause == nil {
		return nil
	}
	return &PlatformError{Kind: KindStorage, Message: cause.Error(), err: cause}
}

// Cancel builds a CancelError for caller-initiated cancellation.
func Cancel() *PlatformError {
	return &PlatformError{Kind: KindCancel, Message: "operation cancelled"}
}

// Is reports whether err is a PlatformError of the given Kind.
func Is(err error, kind Kind) bool {
	pe, ok := err.(*PlatformError)
	return ok && pe.Kind == kind
}

// FieldErrors accumulates validation failures the way the teacher's
// admission webhook accumulates a field.ErrorList before rejecting.
type FieldErrors struct {
	errs []string
}

// Add records one field-level failure.
func (f *FieldErrors) Add(format string, args ...any) {
	f.errs = append(f.errs, fmt.Sprintf(format, args...))
}

// Empty reports whether no field errors were recorded.
func (f *FieldErrors) Empty() bool { return len(f.errs) == 0 }

// AsError collapses the accumulated field errors into one ValidationError,
// or returns nil if none were recorded.
func (f *FieldErrors) AsError() error {
	if f.Empty() {
		return nil
	}
	msg := f.errs[0]
	if len(f.errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(f.errs)-1)
	}
	return Validation("%s", msg)
}
