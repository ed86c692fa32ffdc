package universe

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// typeRef is a parsed type expression: Name<Args...> followed by any
// number of ?, * and [,] suffixes, applied left to right.
type typeRef struct {
	name     string
	args     []*typeRef
	suffixes []refSuffix
}

type refSuffix struct {
	op   byte // '?', '*' or '['
	rank uint8
}

const maxArrayRank = 32

func (r *typeRef) String() string {
	var sb strings.Builder
	r.write(&sb)
	return sb.String()
}

func (r *typeRef) write(sb *strings.Builder) {
	sb.WriteString(r.name)
	if len(r.args) > 0 {
		sb.WriteByte('<')
		for i, a := range r.args {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.write(sb)
		}
		sb.WriteByte('>')
	}
	for _, s := range r.suffixes {
		switch s.op {
		case '[':
			sb.WriteByte('[')
			sb.WriteString(strings.Repeat(",", int(s.rank)-1))
			sb.WriteByte(']')
		default:
			sb.WriteByte(s.op)
		}
	}
}

// isBareName reports a plain identifier without arguments or suffixes.
func (r *typeRef) isBareName() bool {
	return len(r.args) == 0 && len(r.suffixes) == 0 && r.name != "*"
}

func parseRef(src string) (*typeRef, error) {
	p := refParser{src: src}
	r, err := p.ref(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return r, nil
}

type refParser struct {
	src string
	pos int
}

func (p *refParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *refParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *refParser) ref(depth int) (*typeRef, error) {
	if depth > 16 {
		return nil, p.errorf("type arguments nested too deeply")
	}
	p.skipSpace()
	r := &typeRef{}
	if p.peek() == '*' {
		p.pos++
		r.name = "*"
	} else {
		start := p.pos
		for p.pos < len(p.src) {
			c, size := utf8.DecodeRuneInString(p.src[p.pos:])
			if !isNameRune(c, p.pos == start) {
				break
			}
			p.pos += size
		}
		if p.pos == start {
			return nil, p.errorf("expected a type name")
		}
		r.name = p.src[start:p.pos]
	}

	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		for {
			arg, err := p.ref(depth + 1)
			if err != nil {
				return nil, err
			}
			r.args = append(r.args, arg)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case '>':
				p.pos++
			default:
				return nil, p.errorf("expected ',' or '>'")
			}
			break
		}
	}

	for {
		p.skipSpace()
		switch c := p.peek(); c {
		case '?', '*':
			p.pos++
			r.suffixes = append(r.suffixes, refSuffix{op: c})
		case '[':
			p.pos++
			rank := uint8(1)
			p.skipSpace()
			for p.peek() == ',' {
				if rank == maxArrayRank {
					return nil, p.errorf("array rank exceeds %d", maxArrayRank)
				}
				rank++
				p.pos++
				p.skipSpace()
			}
			if p.peek() != ']' {
				return nil, p.errorf("expected ']'")
			}
			p.pos++
			r.suffixes = append(r.suffixes, refSuffix{op: '[', rank: rank})
		default:
			return r, nil
		}
	}
}

func isNameRune(c rune, first bool) bool {
	switch {
	case c == '_' || unicode.IsLetter(c):
		return true
	case first:
		return false
	default:
		return c == '.' || unicode.IsDigit(c)
	}
}
