// Copyright 2026 The CLIPS-Go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines the shared error taxonomy used throughout the
// engine. The pivotal type is [Error], which carries a position, a dotted
// path, and a [Kind] so that callers can switch on failure category instead
// of matching strings.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"clips.dev/go/clips/token"
)

// Kind classifies the structural errors the core can raise. See spec §7.
type Kind int

const (
	Other Kind = iota
	UnknownModule
	ScopeDefinitionNotFound
	ScopeDefinitionConflict
	TemplateRedefined
	RuleCompilationError
	FunctionArityOrType
	FactShape
)

func (k Kind) String() string {
	switch k {
	case UnknownModule:
		return "UnknownModule"
	case ScopeDefinitionNotFound:
		return "ScopeDefinitionNotFound"
	case ScopeDefinitionConflict:
		return "ScopeDefinitionConflict"
	case TemplateRedefined:
		return "TemplateRedefined"
	case RuleCompilationError:
		return "RuleCompilationError"
	case FunctionArityOrType:
		return "FunctionArityOrType"
	case FactShape:
		return "FactShape"
	default:
		return "Other"
	}
}

// Error is the common error type produced by the engine.
type Error interface {
	error

	// Kind reports the structural category of the error.
	Kind() Kind

	// Position returns the primary source position of the error, if any.
	Position() token.Position

	// Path returns the scope/rule/pattern path where the error occurred.
	// May be nil.
	Path() []string
}

type baseError struct {
	kind Kind
	pos  token.Position
	path []string
	msg  string
}

func (e *baseError) Error() string         { return e.msg }
func (e *baseError) Kind() Kind            { return e.kind }
func (e *baseError) Position() token.Position { return e.pos }
func (e *baseError) Path() []string        { return e.path }

// Newf creates an Error of the given kind at the given position.
func Newf(kind Kind, pos token.Position, format string, args ...interface{}) Error {
	return &baseError{kind: kind, pos: pos, msg: fmt.Sprintf(format, args...)}
}

// WithPath attaches a dotted scope/rule/pattern path to an Error.
func WithPath(err Error, path ...string) Error {
	b, ok := err.(*baseError)
	if !ok {
		return err
	}
	cp := *b
	cp.path = path
	return &cp
}

type wrapped struct {
	*baseError
	cause error
}

// Wrapf creates an Error of the given kind, chaining cause for inspection
// via errors.Unwrap/errors.Is.
func Wrapf(cause error, kind Kind, pos token.Position, format string, args ...interface{}) Error {
	return &wrapped{
		baseError: &baseError{kind: kind, pos: pos, msg: fmt.Sprintf(format, args...)},
		cause:     cause,
	}
}

func (e *wrapped) Unwrap() error { return e.cause }
func (e *wrapped) Error() string {
	if e.cause == nil {
		return e.baseError.Error()
	}
	return fmt.Sprintf("%s: %s", e.baseError.Error(), e.cause)
}

// List aggregates multiple independent Errors raised during a single
// transactional operation (scope creation, rule installation) so the caller
// can report every failure instead of only the first.
type List []Error

func (l List) Error() string {
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Append adds err to the list if non-nil, promoting plain errors to Error.
func (l List) Append(err error) List {
	if err == nil {
		return l
	}
	var e Error
	if !errors.As(err, &e) {
		e = &baseError{kind: Other, msg: err.Error()}
	}
	return append(l, e)
}

// Err returns nil if the list is empty, the sole error if it has one entry,
// or the list itself otherwise.
func (l List) Err() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	default:
		return l
	}
}

// Is reports whether the first Error found in err's wrap chain has kind.
func Is(err error, kind Kind) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Kind() == kind
	}
	return false
}
