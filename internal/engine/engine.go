package engine

import (
	"errors"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/modelbind"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// NumberMode selects how number tokens are materialized.
type NumberMode int

const (
	// NumberNative yields int64 for integral literals and float64 otherwise.
	NumberNative NumberMode = iota
	// NumberJSONNumber keeps the literal as json.Number.
	NumberJSONNumber
	// NumberFloat64 yields float64 for every number.
	NumberFloat64
)

type numberConv func(string) (any, error)

func (m NumberMode) conv() numberConv {
	switch m {
	case NumberJSONNumber:
		return func(s string) (any, error) { return json.Number(s), nil }
	case NumberFloat64:
		return func(s string) (any, error) { return strconv.ParseFloat(s, 64) }
	}
	return func(s string) (any, error) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		return strconv.ParseFloat(s, 64)
	}
}

// ErrTrailingData is returned when a source holds more than one top-level value.
var ErrTrailingData = errors.New("engine: unexpected data after top-level value")

// Decode builds plain data from src: objects become *modelbind.Mapping in
// document order, arrays []any, and null nil. A repeated key keeps its first
// position and its last value.
func Decode(src TokenSource, mode NumberMode) (any, error) {
	conv := mode.conv()
	tok, err := src.NextToken()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := decodeValue(src, tok, conv)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err == nil {
			err = ErrTrailingData
		}
		return nil, err
	}
	return v, nil
}

func decodeValue(src TokenSource, tok Token, conv numberConv) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src, conv)
	case KindBeginArray:
		return decodeArray(src, conv)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return conv(tok.Number)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource, conv numberConv) (any, error) {
	m := modelbind.NewMapping()
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		v, err := decodeValue(src, vt, conv)
		if err != nil {
			return nil, err
		}
		m.Set(tok.String, v)
	}
}

func decodeArray(src TokenSource, conv numberConv) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok, conv)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
