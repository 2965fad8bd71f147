package tokenlist

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var (
	ErrInvalidUTF8 = errors.New("document is not valid UTF-8")
	ErrInvalidJSON = errors.New("document is not valid JSON")
)

// Arrays are always expanded, one element per line.
var encodeOptions = &pretty.Options{
	Width:  -1,
	Indent: "  ",
}

// Document is a whole token list kept as its original JSON bytes. Reads go
// through gjson and edits through sjson, so key order, unknown fields and
// number literals outside the edited values survive untouched.
type Document struct {
	raw []byte
}

func Parse(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return &Document{raw: raw}, nil
}

func (d *Document) Clone() *Document {
	raw := make([]byte, len(d.raw))
	copy(raw, d.raw)
	return &Document{raw: raw}
}

// Encode renders the document with two-space indentation and a trailing
// newline.
func (d *Document) Encode() []byte {
	out := pretty.PrettyOptions(d.raw, encodeOptions)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}

// Tokens returns a view of every token. It fails with a SchemaError when the
// tokens field is missing or not an array, or when a token is not an object.
func (d *Document) Tokens() ([]*Token, error) {
	raw, err := d.tokenResults()
	if err != nil {
		return nil, err
	}
	out := make([]*Token, len(raw))
	for i, res := range raw {
		tok, err := decodeToken(i, res)
		if err != nil {
			return nil, err
		}
		out[i] = tok
	}
	return out, nil
}

// TokenCount is the length of the tokens array, or 0 when there is none.
func (d *Document) TokenCount() int {
	raw, err := d.tokenResults()
	if err != nil {
		return 0
	}
	return len(raw)
}

func (d *Document) tokenResults() ([]gjson.Result, error) {
	root := gjson.ParseBytes(d.raw)
	if !root.IsObject() {
		return nil, &SchemaError{Reason: `the "tokens" field is missing or not an array`}
	}
	tokens := root.Get(FieldTokens)
	if !tokens.IsArray() {
		return nil, &SchemaError{Reason: `the "tokens" field is missing or not an array`}
	}
	return tokens.Array(), nil
}

// set replaces the value at path in place, or appends the key when the
// object does not have it yet. Paths use dots for both keys and array
// indices, for example tokens.3.contracts.0.address.
func (d *Document) set(path string, v any) error {
	raw, err := sjson.SetBytes(d.raw, path, v)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	d.raw = raw
	return nil
}

func (d *Document) delete(path string) error {
	raw, err := sjson.DeleteBytes(d.raw, path)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	d.raw = raw
	return nil
}
