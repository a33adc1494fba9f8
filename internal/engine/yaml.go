package engine

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type yamlSource struct {
	toks []Token
	pos  int
}

// NewYAMLNode returns a TokenSource replaying a decoded yaml.v3 document in
// order. Scalars are typed by their resolved tag; aliases are expanded.
// Location is unknown (-1) since the text has already been consumed.
func NewYAMLNode(n *yaml.Node) (TokenSource, error) {
	s := &yamlSource{}
	if err := s.flatten(n); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *yamlSource) emit(t Token) {
	t.Offset = -1
	s.toks = append(s.toks, t)
}

func (s *yamlSource) flatten(n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			s.emit(Token{Kind: KindNull})
			return nil
		}
		return s.flatten(n.Content[0])
	case yaml.AliasNode:
		return s.flatten(n.Alias)
	case yaml.MappingNode:
		s.emit(Token{Kind: KindBeginObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.AliasNode {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			s.emit(Token{Kind: KindKey, String: k.Value})
			if err := s.flatten(n.Content[i+1]); err != nil {
				return err
			}
		}
		s.emit(Token{Kind: KindEndObject})
	case yaml.SequenceNode:
		s.emit(Token{Kind: KindBeginArray})
		for _, c := range n.Content {
			if err := s.flatten(c); err != nil {
				return err
			}
		}
		s.emit(Token{Kind: KindEndArray})
	case yaml.ScalarNode:
		return s.scalar(n)
	default:
		return fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
	return nil
}

func (s *yamlSource) scalar(n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		s.emit(Token{Kind: KindNull})
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		s.emit(Token{Kind: KindBool, Bool: b})
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return err
		}
		s.emit(Token{Kind: KindNumber, Number: strconv.FormatInt(i, 10)})
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		s.emit(Token{Kind: KindNumber, Number: floatLiteral(f)})
	default:
		s.emit(Token{Kind: KindString, String: n.Value})
	}
	return nil
}

// floatLiteral renders f so that it never reads back as an integer: 1.0
// stays "1.0" rather than "1".
func floatLiteral(f float64) string {
	lit := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(lit, ".eEnN") {
		lit += ".0"
	}
	return lit
}

func (s *yamlSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *yamlSource) Location() int64 { return -1 }
