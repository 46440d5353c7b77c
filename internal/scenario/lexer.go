package scenario

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokComma
	tokEqual
	tokStar
	tokArrow
	tokEllipsis
	tokPipe
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "name"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokEqual:
		return "'='"
	case tokStar:
		return "'*'"
	case tokArrow:
		return "'->'"
	case tokEllipsis:
		return "'...'"
	case tokPipe:
		return "'|'"
	default:
		return fmt.Sprintf("token(%d)", k)
	}
}

type token struct {
	Kind tokenKind
	Text string // identifiers only, NFC normalised
	Off  int
}

// lexer splits a type expression into tokens; offsets are byte offsets into
// the original text.
type lexer struct {
	src string
	off int
}

var punct = map[byte]tokenKind{
	'[': tokLBracket, ']': tokRBracket,
	'(': tokLParen, ')': tokRParen,
	',': tokComma, '=': tokEqual,
	'*': tokStar, '|': tokPipe,
}

func (lx *lexer) eof() bool      { return lx.off >= len(lx.src) }
func (lx *lexer) peekByte() byte { return lx.src[lx.off] }

func (lx *lexer) hasPrefix(s string) bool {
	return len(lx.src)-lx.off >= len(s) && lx.src[lx.off:lx.off+len(s)] == s
}

func (lx *lexer) skipSpace() {
	for !lx.eof() {
		r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
		if !unicode.IsSpace(r) {
			return
		}
		lx.off += size
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpace()
	if lx.eof() {
		return token{Kind: tokEOF, Off: lx.off}, nil
	}
	start := lx.off
	switch {
	case lx.hasPrefix("->"):
		lx.off += 2
		return token{Kind: tokArrow, Off: start}, nil
	case lx.hasPrefix("..."):
		lx.off += 3
		return token{Kind: tokEllipsis, Off: start}, nil
	}
	if k, ok := punct[lx.peekByte()]; ok {
		lx.off++
		return token{Kind: k, Off: start}, nil
	}

	if r, size := utf8.DecodeRuneInString(lx.src[start:]); r == utf8.RuneError && size == 1 {
		return token{}, &SyntaxError{Offset: start, Msg: "invalid UTF-8"}
	} else if r != '_' && !unicode.IsLetter(r) {
		return token{}, &SyntaxError{Offset: start, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
	for !lx.eof() {
		r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
		if r == utf8.RuneError && size == 1 {
			return token{}, &SyntaxError{Offset: lx.off, Msg: "invalid UTF-8"}
		}
		if !isIdentRune(r) {
			break
		}
		lx.off += size
	}
	return token{Kind: tokIdent, Text: norm.NFC.String(lx.src[start:lx.off]), Off: start}, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// normalizeName gives declaration names the same form identifiers get from
// the lexer.
func normalizeName(s string) string {
	return norm.NFC.String(s)
}
