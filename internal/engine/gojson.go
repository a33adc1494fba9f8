package engine

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

type keyFrame struct {
	kind         containerKind
	expectingKey bool
}

type goJSONSource struct {
	dec   *j.Decoder
	in    *countingReader
	stack []keyFrame
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// NewJSONReader wraps an io.Reader into a TokenSource backed by goccy/go-json.
// Location reports the bytes consumed from r so far, which runs ahead of the
// token position by at most the decoder's buffer.
func NewJSONReader(r io.Reader) TokenSource {
	in := &countingReader{r: r}
	dec := j.NewDecoder(in)
	dec.UseNumber()
	return &goJSONSource{dec: dec, in: in}
}

// NewJSONBytes wraps a byte slice into a TokenSource.
func NewJSONBytes(b []byte) TokenSource { return NewJSONReader(bytes.NewReader(b)) }

// scalar closes the pending value of the enclosing object.
func (s *goJSONSource) scalar() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *goJSONSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	off := s.in.n
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, keyFrame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject, Offset: off}, nil
		case '[':
			s.stack = append(s.stack, keyFrame{kind: kindArray})
			return Token{Kind: KindBeginArray, Offset: off}, nil
		case '}', ']':
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
			s.scalar()
			if v == '}' {
				return Token{Kind: KindEndObject, Offset: off}, nil
			}
			return Token{Kind: KindEndArray, Offset: off}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v, Offset: off}, nil
			}
		}
		s.scalar()
		return Token{Kind: KindString, String: v, Offset: off}, nil
	case bool:
		s.scalar()
		return Token{Kind: KindBool, Bool: v, Offset: off}, nil
	case j.Number:
		s.scalar()
		return Token{Kind: KindNumber, Number: string(v), Offset: off}, nil
	case float64:
		s.scalar()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}, nil
	}
	s.scalar()
	return Token{Kind: KindNull, Offset: off}, nil
}

func (s *goJSONSource) Location() int64 { return s.in.n }
