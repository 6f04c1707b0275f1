// Package token defines the lexical tokens of the Ferro language and the
// static directive table that gives each `!name` its meaning.
package token

import "fmt"

// Kind identifies the type of a token.
type Kind uint8

const (
	EOF Kind = iota
	Error

	// Structure
	Newline
	Indent
	Dedent

	// Words and literals
	Directive // !name
	Ident
	Number
	String // a plain string literal with no interpolation

	// Interpolated strings are emitted as a sequence:
	// StringOpen (StringText | InterpOpen expr... InterpClose)* StringClose
	StringOpen
	StringText
	StringClose
	InterpOpen
	InterpClose

	// Punctuation
	Dot        // .
	Comma      // ,
	Colon      // :
	Question   // ?
	LParen     // (
	RParen     // )
	LBracket   // [
	RBracket   // ]
	Assign     // =
	PlusPlus   // ++
	MinusMinus // --

	// Operators
	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	Eq      // ==
	NotEq   // !=
	Lt      // <
	Gt      // >
	LtEq    // <=
	GtEq    // >=
	And     // &&
	Or      // ||
	Not     // !  (only inside expressions)
)

var kindNames = map[Kind]string{
	EOF:         "end of file",
	Error:       "error",
	Newline:     "newline",
	Indent:      "indent",
	Dedent:      "dedent",
	Directive:   "directive",
	Ident:       "identifier",
	Number:      "number",
	String:      "string",
	StringOpen:  "string",
	StringText:  "string text",
	StringClose: "string end",
	InterpOpen:  "'{'",
	InterpClose: "'}'",
	Dot:         "'.'",
	Comma:       "','",
	Colon:       "':'",
	Question:    "'?'",
	LParen:      "'('",
	RParen:      "')'",
	LBracket:    "'['",
	RBracket:    "']'",
	Assign:      "'='",
	PlusPlus:    "'++'",
	MinusMinus:  "'--'",
	Plus:        "'+'",
	Minus:       "'-'",
	Star:        "'*'",
	Slash:       "'/'",
	Percent:     "'%'",
	Eq:          "'=='",
	NotEq:       "'!='",
	Lt:          "'<'",
	Gt:          "'>'",
	LtEq:        "'<='",
	GtEq:        "'>='",
	And:         "'&&'",
	Or:          "'||'",
	Not:         "'!'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Span locates a token (or AST node) in its source file.
type Span struct {
	Line   int // 1-based
	Column int // 1-based, in bytes
	Offset int // byte offset into the file
	Length int
}

// Token is one lexical unit. Lit holds the literal payload for identifiers,
// directives (without the marker), numbers and string segments.
type Token struct {
	Kind Kind
	Lit  string
	Span Span
}

func (t Token) String() string {
	if t.Lit != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Lit)
	}
	return t.Kind.String()
}
