package tokenlist

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/terminally-online/tokenlist/internal/address"
)

type Kind int

const (
	KindSchema Kind = iota
	KindInvalidAddress
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindInvalidAddress:
		return "invalid address"
	case KindValidation:
		return "validation"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Violation struct {
	Path    string
	Kind    Kind
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

func (v Violation) Error() string {
	return v.String()
}

// Report is the ordered result of a validation run.
type Report struct {
	Violations []Violation
}

func (r Report) OK() bool {
	return len(r.Violations) == 0
}

func (r Report) Lines() []string {
	lines := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		lines[i] = v.String()
	}
	return lines
}

// Filter returns the violations under path, for example "tokens[3]".
func (r Report) Filter(path string) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Path == path || strings.HasPrefix(v.Path, path+".") || strings.HasPrefix(v.Path, path+"[") {
			out = append(out, v)
		}
	}
	return out
}

func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Report: r}
}

const maxDecimals = 255

// Validate checks every token and returns all violations found. Only a
// missing or malformed tokens array stops the run early.
func Validate(doc *Document) Report {
	tokens, err := doc.tokenResults()
	if err != nil {
		return Report{Violations: []Violation{schemaViolation(err)}}
	}

	var (
		out     []Violation
		symbols = make(map[string]int)
		ids     = make(map[string]int)
	)
	for i, raw := range tokens {
		tok, err := decodeToken(i, raw)
		if err != nil {
			out = append(out, schemaViolation(err))
			continue
		}
		out = append(out, checkToken(tok, symbols, ids)...)
	}

	return Report{Violations: out}
}

func checkToken(tok *Token, symbols, ids map[string]int) []Violation {
	var out []Violation

	if _, ok := tok.Name(); !ok {
		out = append(out, violation(tok.Field(FieldName), KindSchema, "missing or not a string"))
	}

	if sym, ok := tok.Symbol(); !ok {
		out = append(out, violation(tok.Field(FieldSymbol), KindSchema, "missing or not a string"))
	} else {
		folded := strings.ToLower(sym)
		if prev, dup := symbols[folded]; dup {
			out = append(out, violation(tok.Field(FieldSymbol), KindValidation,
				fmt.Sprintf("%q is not unique (already used by %s)", sym, tokenPath(prev))))
		} else {
			symbols[folded] = tok.Index
		}
	}

	if sources, ok := tok.Sources(); !ok {
		out = append(out, violation(tok.Field(FieldSources), KindSchema, "missing or not an array"))
	} else {
		for j, raw := range sources {
			out = append(out, checkSource(fmt.Sprintf("%s[%d]", tok.Field(FieldSources), j), raw)...)
		}
	}

	if contracts, ok := tok.Contracts(); !ok {
		out = append(out, violation(tok.Field(FieldContracts), KindSchema, "missing or not an array"))
	} else {
		for j, raw := range contracts {
			out = append(out, checkContract(fmt.Sprintf("%s[%d]", tok.Field(FieldContracts), j), raw)...)
		}
	}

	out = append(out, checkLogo(tok)...)
	out = append(out, checkTimestamp(tok)...)
	out = append(out, checkID(tok, ids)...)

	return out
}

func checkSource(path string, raw gjson.Result) []Violation {
	src, err := DecodeSource(raw)
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) && se.Path != "" {
			return []Violation{violation(path+"."+se.Path, KindSchema, se.Reason)}
		}
		return []Violation{violation(path, KindSchema, err.Error())}
	}

	oracle, ok := src.(*OracleSource)
	if !ok {
		return nil
	}

	var out []Violation
	data := path + ".data"

	if _, ok := oracle.ChainID(); !ok {
		out = append(out, violation(data+".chainId", KindSchema, "missing or not a number"))
	}
	addr, ok := oracle.Address()
	if !ok || addr == "" {
		out = append(out, violation(data+".address", KindSchema, "missing or not a string"))
	} else {
		out = append(out, checkChecksum(data+".address", addr)...)
	}
	out = append(out, checkDecimals(data+".decimals", oracle.Decimals)...)

	return out
}

func checkContract(path string, raw gjson.Result) []Violation {
	c, err := DecodeContract(raw)
	if err != nil {
		return []Violation{violation(path, KindSchema, err.Error())}
	}

	var out []Violation
	if _, ok := c.Chain(); !ok {
		out = append(out, violation(path+".chain", KindSchema, "missing or not a string"))
	}
	addr, ok := c.Address()
	if !ok || addr == "" {
		out = append(out, violation(path+".address", KindSchema, "missing or not a string"))
	} else {
		out = append(out, checkChecksum(path+".address", addr)...)
	}
	out = append(out, checkDecimals(path+".decimals", c.Decimals)...)

	return out
}

func checkChecksum(path, addr string) []Violation {
	if !address.HasPrefix(addr) {
		return nil
	}
	canonical, err := address.Checksum(addr)
	if err != nil {
		var invalid *address.InvalidAddressError
		if errors.As(err, &invalid) {
			return []Violation{violation(path, KindInvalidAddress,
				fmt.Sprintf("%q is not a valid address (%s)", addr, invalid.Reason))}
		}
		return []Violation{violation(path, KindInvalidAddress, err.Error())}
	}
	if canonical != addr {
		return []Violation{violation(path, KindValidation,
			fmt.Sprintf("checksum mismatch: expected %s, got %s", canonical, addr))}
	}
	return nil
}

// checkDecimals compares the numeric value, so 18, 18.0 and 1.8e1 are all
// accepted.
func checkDecimals(path string, get func() (float64, bool)) []Violation {
	d, ok := get()
	if !ok {
		return []Violation{violation(path, KindSchema, "missing or not a number")}
	}
	if d < 0 || d > maxDecimals || d != math.Trunc(d) {
		return []Violation{violation(path, KindValidation,
			fmt.Sprintf("%s is not an integer between 0 and %d", strconv.FormatFloat(d, 'g', -1, 64), maxDecimals))}
	}
	return nil
}

func checkLogo(tok *Token) []Violation {
	v := tok.Get(FieldLogo)
	if isAbsent(v) {
		return nil
	}
	logo, ok := stringOf(v)
	if !ok {
		return []Violation{violation(tok.Field(FieldLogo), KindSchema, "not a string")}
	}
	if !strings.HasPrefix(logo, "http") {
		return []Violation{violation(tok.Field(FieldLogo), KindValidation,
			fmt.Sprintf("%q is not a valid URL (must start with http)", logo))}
	}
	return nil
}

func checkTimestamp(tok *Token) []Violation {
	ts, ok := tok.Timestamp()
	if !ok || ts == "" {
		return []Violation{violation(tok.Field(FieldTimestamp), KindSchema, "missing or not a string")}
	}
	if !ValidTimestamp(ts) {
		return []Violation{violation(tok.Field(FieldTimestamp), KindValidation,
			fmt.Sprintf("%q is not in ISO 8601 format (%s)", ts, TimestampLayout))}
	}
	return nil
}

func checkID(tok *Token, ids map[string]int) []Violation {
	v := tok.Get(FieldID)
	if isAbsent(v) {
		return nil
	}
	id, ok := stringOf(v)
	if !ok || id == "" {
		return []Violation{violation(tok.Field(FieldID), KindSchema, "not a non-empty string")}
	}
	if prev, dup := ids[id]; dup {
		return []Violation{violation(tok.Field(FieldID), KindValidation,
			fmt.Sprintf("%q is not unique (already used by %s)", id, tokenPath(prev)))}
	}
	ids[id] = tok.Index
	return nil
}

func violation(path string, kind Kind, msg string) Violation {
	return Violation{Path: path, Kind: kind, Message: msg}
}

func schemaViolation(err error) Violation {
	var se *SchemaError
	if errors.As(err, &se) {
		return Violation{Path: se.Path, Kind: KindSchema, Message: se.Reason}
	}
	return Violation{Kind: KindSchema, Message: err.Error()}
}
