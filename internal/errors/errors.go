// Package errors provides the structured error report type shared by every
// compiler phase, following the same schema+code+phase shape as AILANG's
// internal/errors package.
package errors

import (
	"errors"
	"fmt"

	"github.com/oalang/apic/internal/locator"
)

// Kind enumerates the abstract error categories from the design (§7).
type Kind string

const (
	NotInScope       Kind = "NotInScope"
	InvalidType      Kind = "InvalidType"
	RelationConfl    Kind = "RelationConflict"
	CycleDetected    Kind = "CycleDetected"
	InvalidYaml      Kind = "InvalidYaml"
	EmptyPath        Kind = "EmptyPath"
	InvalidUrl       Kind = "InvalidUrl"
	ModuleNotFound   Kind = "ModuleNotFound"
	ParseFailed      Kind = "ParseFailed"
	UnknownInvariant Kind = "Unknown"
)

// Report is the canonical structured error value produced by every pass.
// It is returned wrapped as a *ReportError so the standard errors.As/Is
// machinery keeps working across package boundaries. Code carries the
// phase's numeric taxonomy code (see codes.go) when one applies to Kind;
// Kind alone is always present and is what callers switch on.
type Report struct {
	Kind    Kind
	Code    string
	Phase   string
	Message string
	Span    *locator.Span
	Data    map[string]any
}

func (r *Report) Error() string {
	tag := string(r.Kind)
	if r.Code != "" {
		tag = r.Code
	}
	if r.Span != nil {
		return fmt.Sprintf("%s[%s] %s (at %s)", r.Phase, tag, r.Message, r.Span)
	}
	return fmt.Sprintf("%s[%s] %s", r.Phase, tag, r.Message)
}

// ReportError wraps a *Report as an error so it survives errors.As
// unwrapping through fmt.Errorf("...: %w", err) chains.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Error()
}

func (e *ReportError) Unwrap() error {
	return nil
}

// New builds a Report with no span attached.
func New(kind Kind, phase, message string) *Report {
	return &Report{Kind: kind, Phase: phase, Message: message}
}

// WithCode returns a copy of r with one of the phase taxonomy codes from
// codes.go (e.g. LDR002) attached.
func (r *Report) WithCode(code string) *Report {
	c := *r
	c.Code = code
	return &c
}

// At returns a copy of r with the given span attached.
func (r *Report) At(span locator.Span) *Report {
	c := *r
	c.Span = &span
	return &c
}

// With attaches structured data to the report, returning r for chaining.
func (r *Report) With(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// Wrap turns a Report into an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// As extracts the *Report from an error chain, if any step of the chain is
// a *ReportError.
func As(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// KindOf reports the Kind carried by err, if it is (or wraps) a *ReportError.
func KindOf(err error) (Kind, bool) {
	r, ok := As(err)
	if !ok {
		return "", false
	}
	return r.Kind, true
}

// Encode renders r as the AI-first structured JSON shape (see
// json_encoder.go), for the CLI's -v/--json diagnostics mode. sid is the
// caller's span-derived identifier (e.g. a locator string); unknown is
// substituted when empty.
func (r *Report) Encode(sid string) Encoded {
	code := r.Code
	if code == "" {
		code = string(r.Kind)
	}
	e := NewEncoded(sid, r.Phase, code, r.Message, r.Data)
	if r.Span != nil {
		e.SourceSpan = r.Span.String()
	}
	return e
}
