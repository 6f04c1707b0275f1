// Package diag defines the diagnostic values every compiler stage reports.
// Diagnostics from one file are collected and returned together; nothing in
// the compiler surfaces errors one at a time.
package diag

import (
	"fmt"
	"sort"

	"github.com/ferroui/ferro/pkg/token"
)

// Severity of a diagnostic. Warnings never prevent descriptor generation.
type Severity uint8

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Code is a stable, mnemonic diagnostic identifier.
type Code string

const (
	// Lexer
	UnterminatedString Code = "unterminated-string"
	MixedIndentation   Code = "mixed-indentation"
	BadDedent          Code = "bad-dedent"
	InterpTooDeep      Code = "interp-too-deep"
	InvalidToken       Code = "invalid-token"

	// Parser
	UnexpectedToken  Code = "unexpected-token"
	UnknownDirective Code = "unknown-directive"
	OrphanElse       Code = "orphan-else"

	// Resolver
	UndefinedReference   Code = "undefined-reference"
	DuplicateDeclaration Code = "duplicate-declaration"
	CyclicDependency     Code = "cyclic-dependency"

	// Codegen
	StructuralWhile Code = "structural-while"
	UnresolvedSlot  Code = "unresolved-slot"

	// Styling
	UnknownStyle Code = "unknown-style"
)

// Diagnostic is one reported problem with its source location.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Length   int      `json:"length"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s [%s]", d.Line, d.Column, d.Severity, d.Message, d.Code)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Errorf appends an error-severity diagnostic at span.
func (l *List) Errorf(code Code, span token.Span, format string, args ...any) {
	l.add(Error, code, span, format, args...)
}

// Warnf appends a warning-severity diagnostic at span.
func (l *List) Warnf(code Code, span token.Span, format string, args ...any) {
	l.add(Warning, code, span, format, args...)
}

func (l *List) add(sev Severity, code Code, span token.Span, format string, args ...any) {
	*l = append(*l, Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     span.Line,
		Column:   span.Column,
		Length:   span.Length,
	})
}

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by ascending source position. The sort is stable
// so diagnostics at the same position keep their reporting order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Line != l[j].Line {
			return l[i].Line < l[j].Line
		}
		return l[i].Column < l[j].Column
	})
}
