package tokenlist

import (
	"fmt"
	"regexp"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// SchemaRevision is the only schema revision understood by this package:
// oracle sources carry a numeric chainId, symbols are unique regardless of
// case and every 0x address must be checksummed.
const SchemaRevision = 2

const (
	FieldTokens    = "tokens"
	FieldID        = "id"
	FieldLegacyKey = "key"
	FieldName      = "name"
	FieldSymbol    = "symbol"
	FieldSources   = "sources"
	FieldContracts = "contracts"
	FieldLogo      = "logo"
	FieldTimestamp = "timestamp"
)

const TimestampLayout = "2006-01-02T15:04:05.000Z"

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ValidTimestamp reports whether s matches the millisecond UTC layout and
// names a real instant.
func ValidTimestamp(s string) bool {
	if !timestampPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(TimestampLayout, s)
	return err == nil
}

// Token is a read-only view of one entry of the tokens array.
type Token struct {
	Index int
	res   gjson.Result
}

func decodeToken(index int, res gjson.Result) (*Token, error) {
	if !res.IsObject() {
		return nil, &SchemaError{Path: tokenPath(index), Reason: "not an object"}
	}
	return &Token{Index: index, res: res}, nil
}

func (t *Token) Path() string {
	return tokenPath(t.Index)
}

func (t *Token) Field(name string) string {
	return t.Path() + "." + name
}

// Get returns the raw value of a top-level field.
func (t *Token) Get(name string) gjson.Result {
	return t.res.Get(name)
}

// JSON returns the token compacted onto one line.
func (t *Token) JSON() []byte {
	return pretty.Ugly([]byte(t.res.Raw))
}

// ID returns the identifier when it is a non-empty string.
func (t *Token) ID() (string, bool) {
	id, ok := stringOf(t.res.Get(FieldID))
	return id, ok && id != ""
}

// HasID reports whether the id field carries any value at all. Missing, null
// and empty string all count as no identifier.
func (t *Token) HasID() bool {
	v := t.res.Get(FieldID)
	if isAbsent(v) {
		return false
	}
	return v.Type != gjson.String || v.Str != ""
}

func (t *Token) Symbol() (string, bool) {
	s, ok := stringOf(t.res.Get(FieldSymbol))
	return s, ok && s != ""
}

func (t *Token) Name() (string, bool) {
	s, ok := stringOf(t.res.Get(FieldName))
	return s, ok && s != ""
}

func (t *Token) Logo() (string, bool) {
	return stringOf(t.res.Get(FieldLogo))
}

func (t *Token) Timestamp() (string, bool) {
	return stringOf(t.res.Get(FieldTimestamp))
}

func (t *Token) Sources() ([]gjson.Result, bool) {
	return arrayOf(t.res.Get(FieldSources))
}

func (t *Token) Contracts() ([]gjson.Result, bool) {
	return arrayOf(t.res.Get(FieldContracts))
}

// jsonPath addresses a value inside this token in sjson syntax.
func (t *Token) jsonPath(rest string) string {
	return fmt.Sprintf("%s.%d.%s", FieldTokens, t.Index, rest)
}

type SourceType string

const (
	SourceOracle    SourceType = "oracle"
	SourceBinance   SourceType = "binance"
	SourceCoingecko SourceType = "coingecko"
)

var sourceTypes = []SourceType{SourceOracle, SourceBinance, SourceCoingecko}

// Source is either an *OracleSource or a *TickerSource.
type Source interface {
	Type() SourceType
	isSource()
}

// OracleSource reads its price on chain.
type OracleSource struct {
	data gjson.Result
}

func (*OracleSource) Type() SourceType { return SourceOracle }
func (*OracleSource) isSource()        {}

func (s *OracleSource) ChainID() (float64, bool) {
	return numberOf(s.data.Get("chainId"))
}

func (s *OracleSource) Address() (string, bool) {
	return stringOf(s.data.Get("address"))
}

func (s *OracleSource) Decimals() (float64, bool) {
	return numberOf(s.data.Get("decimals"))
}

// TickerSource names the symbol an off-chain provider lists the token under.
type TickerSource struct {
	Provider SourceType
	Ticker   string
}

func (s *TickerSource) Type() SourceType { return s.Provider }
func (*TickerSource) isSource()          {}

// DecodeSource turns one entry of a token's sources array into its variant.
// Errors carry a path relative to the source ("type" or "data").
func DecodeSource(v gjson.Result) (Source, error) {
	if !v.IsObject() {
		return nil, &SchemaError{Reason: "not an object"}
	}

	typ, _ := stringOf(v.Get("type"))
	switch SourceType(typ) {
	case SourceOracle:
		data := v.Get("data")
		if !data.IsObject() {
			return nil, &SchemaError{Path: "data", Reason: "missing or not an object"}
		}
		return &OracleSource{data: data}, nil

	case SourceBinance, SourceCoingecko:
		ticker, ok := stringOf(v.Get("data"))
		if !ok || ticker == "" {
			return nil, &SchemaError{Path: "data", Reason: "missing or not a string"}
		}
		return &TickerSource{Provider: SourceType(typ), Ticker: ticker}, nil
	}

	return nil, &SchemaError{
		Path:   "type",
		Reason: fmt.Sprintf("missing or invalid (must be one of: %s, %s, %s)", sourceTypes[0], sourceTypes[1], sourceTypes[2]),
	}
}

// Contract is a deployment of the token on one chain.
type Contract struct {
	res gjson.Result
}

func DecodeContract(v gjson.Result) (*Contract, error) {
	if !v.IsObject() {
		return nil, &SchemaError{Reason: "not an object"}
	}
	return &Contract{res: v}, nil
}

func (c *Contract) Chain() (string, bool) {
	return stringOf(c.res.Get("chain"))
}

func (c *Contract) Address() (string, bool) {
	return stringOf(c.res.Get("address"))
}

func (c *Contract) Decimals() (float64, bool) {
	return numberOf(c.res.Get("decimals"))
}

func stringOf(v gjson.Result) (string, bool) {
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

func numberOf(v gjson.Result) (float64, bool) {
	if v.Type != gjson.Number {
		return 0, false
	}
	return v.Num, true
}

func arrayOf(v gjson.Result) ([]gjson.Result, bool) {
	if !v.IsArray() {
		return nil, false
	}
	return v.Array(), true
}

// isAbsent treats a missing field and an explicit null the same way.
func isAbsent(v gjson.Result) bool {
	return !v.Exists() || v.Type == gjson.Null
}

func tokenPath(i int) string {
	return fmt.Sprintf("%s[%d]", FieldTokens, i)
}
