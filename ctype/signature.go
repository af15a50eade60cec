package ctype

import (
	"fmt"
	"strings"
)

// ParseSignature parses the canonical type signature grammar produced by
// Type.String back into a *Type. It is the inverse of String and is used
// when loading a DagSpec from its canonical text format.
func ParseSignature(s string) (*Type, error) {
	p := &sigParser{input: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("ctype: unexpected trailing input at %d: %q", p.pos, p.input[p.pos:])
	}
	return t, nil
}

type sigParser struct {
	input string
	pos   int
}

func (p *sigParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *sigParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *sigParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return fmt.Errorf("ctype: expected %q at position %d in %q", c, p.pos, p.input)
	}
	p.pos++
	return nil
}

func (p *sigParser) parseIdent() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '<' || c == '>' || c == ',' || c == '{' || c == '}' || c == ':' || c == ' ' {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *sigParser) parseType() (*Type, error) {
	name := p.parseIdent()
	switch name {
	case "Unit":
		return Unit, nil
	case "Bool":
		return Bool, nil
	case "Int":
		return Int, nil
	case "Float":
		return Float, nil
	case "String":
		return String, nil
	case "List":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return List(elem), nil
	case "Option":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return Option(elem), nil
	case "Map":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return Map(key, val), nil
	case "Product":
		if err := p.expect('{'); err != nil {
			return nil, err
		}
		var fields []Field
		p.skipSpace()
		if p.peek() != '}' {
			for {
				fname := p.parseIdent()
				if fname == "" {
					return nil, fmt.Errorf("ctype: expected field name at position %d in %q", p.pos, p.input)
				}
				if err := p.expect(':'); err != nil {
					return nil, err
				}
				ftype, err := p.parseType()
				if err != nil {
					return nil, err
				}
				fields = append(fields, Field{Name: fname, Type: ftype})
				p.skipSpace()
				if p.peek() == ',' {
					p.pos++
					continue
				}
				break
			}
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return Product(fields...), nil
	default:
		return nil, fmt.Errorf("ctype: unknown type constructor %q in %q", strings.TrimSpace(name), p.input)
	}
}
