package script

import (
	"fmt"
	"strings"
	"unicode"
)

// entKind enumerates the entity stream produced by the lexer.
type entKind int

const (
	entNumber entKind = iota
	entVarDecl         // ?name
	entConstDecl       // @name
	entAssign          // :name
	entGet             // =name
	entBeginGroup      // (
	entEndGroup        // )
	entOperation       // bare word
	entEOF             // |;
)

type entity struct {
	kind entKind
	num  int
	name string
	line int
}

// lexer walks the script text and yields one entity at a time.
// Comments run from '#' to end of line. The stream ends at the |;
// marker; trailing text after it is ignored.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (lx *lexer) next() (entity, error) {
	lx.skipBlank()
	if lx.pos >= len(lx.src) {
		return entity{}, lineErr(lx.line, fmt.Errorf("%w: missing |; marker", ErrLexical))
	}
	line := lx.line
	c := lx.src[lx.pos]
	switch {
	case c == '|' && lx.peek(1) == ';':
		lx.pos += 2
		return entity{kind: entEOF, line: line}, nil
	case c == '(':
		lx.pos++
		return entity{kind: entBeginGroup, line: line}, nil
	case c == ')':
		lx.pos++
		return entity{kind: entEndGroup, line: line}, nil
	case c == '?':
		return lx.named(entVarDecl)
	case c == '@':
		return lx.named(entConstDecl)
	case c == ':':
		return lx.named(entAssign)
	case c == '=':
		return lx.named(entGet)
	case c >= '0' && c <= '9':
		return lx.number()
	case isWordStart(rune(c)):
		start := lx.pos
		for lx.pos < len(lx.src) && isWordPart(rune(lx.src[lx.pos])) {
			lx.pos++
		}
		return entity{kind: entOperation, name: lx.src[start:lx.pos], line: line}, nil
	}
	return entity{}, lineErr(line, fmt.Errorf("%w: unexpected character %q", ErrLexical, c))
}

func (lx *lexer) named(kind entKind) (entity, error) {
	line := lx.line
	lx.pos++ // sigil
	start := lx.pos
	for lx.pos < len(lx.src) && isWordPart(rune(lx.src[lx.pos])) {
		lx.pos++
	}
	name := lx.src[start:lx.pos]
	if name == "" || !isWordStart(rune(name[0])) {
		return entity{}, lineErr(line, fmt.Errorf("%w: expected a name", ErrLexical))
	}
	return entity{kind: kind, name: name, line: line}, nil
}

func (lx *lexer) number() (entity, error) {
	line := lx.line
	start := lx.pos
	for lx.pos < len(lx.src) && lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9' {
		lx.pos++
	}
	digits := lx.src[start:lx.pos]
	// Literals are decimal non-negative integers fitting in 16 bits.
	if len(strings.TrimLeft(digits, "0")) > 5 {
		return entity{}, lineErr(line, fmt.Errorf("%w: literal %s out of range", ErrLexical, digits))
	}
	n := 0
	for _, d := range digits {
		n = n*10 + int(d-'0')
	}
	if n > 65535 {
		return entity{}, lineErr(line, fmt.Errorf("%w: literal %s out of range", ErrLexical, digits))
	}
	return entity{kind: entNumber, num: n, line: line}, nil
}

func (lx *lexer) skipBlank() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.line++
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++
		case c == '#':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

func (lx *lexer) peek(ahead int) byte {
	if lx.pos+ahead >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+ahead]
}

func isWordStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isWordPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
