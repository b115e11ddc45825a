package rdf

import (
	"fmt"
	"strings"
)

// ValidationError reports a term that fails its validity predicate.
type ValidationError struct {
	Term   Term
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}

// Position locates a character in the input text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, in runes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// LexError reports an unrecognized character or an unterminated token.
type LexError struct {
	Pos  Position
	Char rune
	Msg  string
}

func (e *LexError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("lex error at %s: %s (%q)", e.Pos, e.Msg, e.Char)
	}
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg)
}

// ParseError reports input that does not match the expected grammar.
type ParseError struct {
	Format   string // "ntriples" or "turtle"
	Pos      Position
	Expected string
	Found    string
	Msg      string
	Err      error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)
	if e.Pos.Line > 0 {
		fmt.Fprintf(&msg, ":%s", e.Pos)
	}
	msg.WriteString(": ")
	switch {
	case e.Expected != "":
		fmt.Fprintf(&msg, "expected %s, found %s", e.Expected, e.Found)
		if e.Msg != "" {
			msg.WriteString(" (" + e.Msg + ")")
		}
	case e.Msg != "":
		msg.WriteString(e.Msg)
	case e.Err != nil:
		msg.WriteString(e.Err.Error())
	}
	if e.Err != nil && (e.Expected != "" || e.Msg != "") {
		msg.WriteString(": ")
		msg.WriteString(e.Err.Error())
	}
	return msg.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
