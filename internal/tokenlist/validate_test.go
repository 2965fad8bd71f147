package tokenlist

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidList(t *testing.T) {
	doc := mustParse(t, listJSON(
		tokenJSON("AAA", map[string]string{"logo": `"https://example.com/a.png"`, "id": `"a"`}),
		tokenJSON("BBB", map[string]string{"sources": `[{"type":"binance","data":"BBBUSDT"}]`}),
	))

	report := Validate(doc)
	assert.True(t, report.OK(), report.Lines())
	assert.NoError(t, report.Err())
}

func TestValidate_MissingTokens(t *testing.T) {
	for name, in := range map[string]string{
		"missing":    `{"name":"x"}`,
		"not array":  `{"tokens":"nope"}`,
		"not object": `"tokens"`,
	} {
		t.Run(name, func(t *testing.T) {
			report := Validate(mustParse(t, in))
			require.Len(t, report.Violations, 1)
			assert.Equal(t, KindSchema, report.Violations[0].Kind)
			assert.Equal(t, `the "tokens" field is missing or not an array`, report.Violations[0].String())
		})
	}
}

func TestValidate_SymbolUniquenessIgnoresCase(t *testing.T) {
	doc := mustParse(t, listJSON(tokenJSON("ABC", nil), tokenJSON("abc", nil), tokenJSON("Abd", nil)))

	report := Validate(doc)
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, "tokens[1].symbol", v.Path)
	assert.Equal(t, KindValidation, v.Kind)
	assert.Equal(t, `tokens[1].symbol: "abc" is not unique (already used by tokens[0])`, v.String())
}

func TestValidate_ReportsEveryProblemOfAToken(t *testing.T) {
	doc := mustParse(t, listJSON(
		tokenJSON("FOO", nil),
		tokenJSON("FOO", map[string]string{"name": "", "timestamp": `"2024-01-01 00:00:00"`}),
	))

	report := Validate(doc)
	got := report.Filter("tokens[1]")
	require.Len(t, got, 3, report.Lines())
	assert.Equal(t, "tokens[1].name", got[0].Path)
	assert.Equal(t, "tokens[1].symbol", got[1].Path)
	assert.Equal(t, "tokens[1].timestamp", got[2].Path)
	assert.Empty(t, report.Filter("tokens[0]"))
}

func TestValidate_LogoScheme(t *testing.T) {
	doc := mustParse(t, listJSON(tokenJSON("FOO", map[string]string{"logo": `"ftp://example.com/x.png"`})))

	report := Validate(doc)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "tokens[0].logo", report.Violations[0].Path)
	assert.Equal(t, KindValidation, report.Violations[0].Kind)
}

func TestValidate_TokenFields(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		path      string
		kind      Kind
	}{
		{"name missing", map[string]string{"name": ""}, "tokens[0].name", KindSchema},
		{"name not string", map[string]string{"name": `42`}, "tokens[0].name", KindSchema},
		{"name empty", map[string]string{"name": `""`}, "tokens[0].name", KindSchema},
		{"symbol missing", map[string]string{"symbol": ""}, "tokens[0].symbol", KindSchema},
		{"sources missing", map[string]string{"sources": ""}, "tokens[0].sources", KindSchema},
		{"sources not array", map[string]string{"sources": `{}`}, "tokens[0].sources", KindSchema},
		{"contracts missing", map[string]string{"contracts": ""}, "tokens[0].contracts", KindSchema},
		{"logo not string", map[string]string{"logo": `7`}, "tokens[0].logo", KindSchema},
		{"logo empty", map[string]string{"logo": `""`}, "tokens[0].logo", KindValidation},
		{"timestamp missing", map[string]string{"timestamp": ""}, "tokens[0].timestamp", KindSchema},
		{"timestamp no millis", map[string]string{"timestamp": `"2024-01-01T00:00:00Z"`}, "tokens[0].timestamp", KindValidation},
		{"timestamp offset", map[string]string{"timestamp": `"2024-01-01T00:00:00.000+01:00"`}, "tokens[0].timestamp", KindValidation},
		{"timestamp impossible date", map[string]string{"timestamp": `"2024-13-01T00:00:00.000Z"`}, "tokens[0].timestamp", KindValidation},
		{"timestamp suffix", map[string]string{"timestamp": `"2024-01-01T00:00:00.000Zjunk"`}, "tokens[0].timestamp", KindValidation},
		{"id not string", map[string]string{"id": `5`}, "tokens[0].id", KindSchema},
		{"id empty", map[string]string{"id": `""`}, "tokens[0].id", KindSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(mustParse(t, listJSON(tokenJSON("FOO", tt.overrides))))
			require.Len(t, report.Violations, 1, report.Lines())
			assert.Equal(t, tt.path, report.Violations[0].Path)
			assert.Equal(t, tt.kind, report.Violations[0].Kind)
		})
	}
}

func TestValidate_AcceptedVariants(t *testing.T) {
	upper := "0X" + strings.ToLower(oracleAddr[2:])

	tests := []struct {
		name      string
		overrides map[string]string
	}{
		{"null logo", map[string]string{"logo": `null`}},
		{"null id", map[string]string{"id": `null`}},
		{"decimals with fraction digits", map[string]string{
			"contracts": `[{"chain":"1","address":"` + contractAddr + `","decimals":18.0}]`,
		}},
		{"decimals in exponent form", map[string]string{
			"sources": `[{"type":"oracle","data":{"chainId":1,"address":"` + oracleAddr + `","decimals":1.8e1}}]`,
		}},
		{"uppercase 0X prefix is not checksummed", map[string]string{
			"sources":   `[{"type":"oracle","data":{"chainId":1,"address":"` + upper + `","decimals":18}}]`,
			"contracts": `[{"chain":"1","address":"` + upper + `","decimals":18}]`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(mustParse(t, listJSON(tokenJSON("FOO", tt.overrides))))
			assert.True(t, report.OK(), report.Lines())
		})
	}
}

func TestValidate_Sources(t *testing.T) {
	oracle := func(data string) string { return `[{"type":"oracle","data":` + data + `}]` }

	tests := []struct {
		name    string
		sources string
		want    []string
	}{
		{
			name:    "unknown type",
			sources: `[{"type":"kraken","data":"X"}]`,
			want:    []string{"tokens[0].sources[0].type: missing or invalid (must be one of: oracle, binance, coingecko)"},
		},
		{
			name:    "missing type",
			sources: `[{"data":"X"}]`,
			want:    []string{"tokens[0].sources[0].type: missing or invalid (must be one of: oracle, binance, coingecko)"},
		},
		{
			name:    "not an object",
			sources: `["oracle"]`,
			want:    []string{"tokens[0].sources[0]: not an object"},
		},
		{
			name:    "oracle with string data",
			sources: oracle(`"0xabc"`),
			want:    []string{"tokens[0].sources[0].data: missing or not an object"},
		},
		{
			name:    "ticker with object data",
			sources: `[{"type":"binance","data":{"symbol":"FOO"}}]`,
			want:    []string{"tokens[0].sources[0].data: missing or not a string"},
		},
		{
			name:    "oracle missing everything",
			sources: oracle(`{}`),
			want: []string{
				"tokens[0].sources[0].data.chainId: missing or not a number",
				"tokens[0].sources[0].data.address: missing or not a string",
				"tokens[0].sources[0].data.decimals: missing or not a number",
			},
		},
		{
			name:    "oracle chain as string",
			sources: oracle(`{"chain":"1","address":"` + oracleAddr + `","decimals":18}`),
			want:    []string{"tokens[0].sources[0].data.chainId: missing or not a number"},
		},
		{
			name:    "oracle decimals out of range",
			sources: oracle(`{"chainId":1,"address":"` + oracleAddr + `","decimals":256}`),
			want:    []string{"tokens[0].sources[0].data.decimals: 256 is not an integer between 0 and 255"},
		},
		{
			name:    "oracle decimals fractional",
			sources: oracle(`{"chainId":1,"address":"` + oracleAddr + `","decimals":6.5}`),
			want:    []string{"tokens[0].sources[0].data.decimals: 6.5 is not an integer between 0 and 255"},
		},
		{
			name:    "oracle decimals negative",
			sources: oracle(`{"chainId":1,"address":"` + oracleAddr + `","decimals":-1e0}`),
			want:    []string{"tokens[0].sources[0].data.decimals: -1 is not an integer between 0 and 255"},
		},
		{
			name:    "oracle non-evm address is not checksummed",
			sources: oracle(`{"chainId":101,"address":"So11111111111111111111111111111111111111112","decimals":9}`),
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(mustParse(t, listJSON(tokenJSON("FOO", map[string]string{"sources": tt.sources}))))
			assert.Equal(t, tt.want, report.Lines())
		})
	}
}

func TestValidate_Contracts(t *testing.T) {
	report := Validate(mustParse(t, listJSON(tokenJSON("FOO", map[string]string{
		"contracts": `[{"chain":1,"address":"","decimals":"18"},42]`,
	}))))

	assert.Equal(t, []string{
		"tokens[0].contracts[0].chain: missing or not a string",
		"tokens[0].contracts[0].address: missing or not a string",
		"tokens[0].contracts[0].decimals: missing or not a number",
		"tokens[0].contracts[1]: not an object",
	}, report.Lines())
}

func TestValidate_ChecksumMismatch(t *testing.T) {
	wrong := "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	report := Validate(mustParse(t, listJSON(tokenJSON("FOO", map[string]string{
		"contracts": `[{"chain":"1","address":"` + wrong + `","decimals":18}]`,
	}))))

	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, KindValidation, v.Kind)
	assert.Equal(t, "tokens[0].contracts[0].address", v.Path)
	assert.Contains(t, v.Message, "expected 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	assert.Contains(t, v.Message, "got "+wrong)
}

func TestValidate_InvalidAddressIsDistinct(t *testing.T) {
	short := "0x52908400098527886e0f7030069857d2e4169ee"
	report := Validate(mustParse(t, listJSON(tokenJSON("FOO", map[string]string{
		"sources": `[{"type":"oracle","data":{"chainId":1,"address":"` + short + `","decimals":18}}]`,
	}))))

	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, KindInvalidAddress, v.Kind)
	assert.Equal(t, "tokens[0].sources[0].data.address", v.Path)
	assert.Contains(t, v.Message, "is not a valid address")
	assert.NotContains(t, v.Message, "checksum")
}

func TestValidate_DuplicateIDs(t *testing.T) {
	report := Validate(mustParse(t, listJSON(
		tokenJSON("AAA", map[string]string{"id": `"same"`}),
		tokenJSON("BBB", map[string]string{"id": `"same"`}),
	)))

	require.Len(t, report.Violations, 1)
	assert.Equal(t, `tokens[1].id: "same" is not unique (already used by tokens[0])`, report.Violations[0].String())
}

func TestValidate_NonObjectTokenDoesNotStopTheRun(t *testing.T) {
	report := Validate(mustParse(t, `{"tokens":[null,`+tokenJSON("FOO", map[string]string{"name": ""})+`]}`))

	assert.Equal(t, []string{
		"tokens[0]: not an object",
		"tokens[1].name: missing or not a string",
	}, report.Lines())
}

func TestReport_Err(t *testing.T) {
	report := Validate(mustParse(t, listJSON(tokenJSON("FOO", map[string]string{"name": "", "symbol": ""}))))

	err := report.Err()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Report.Violations, 2)
	assert.Contains(t, err.Error(), "validation failed with 2 errors")

	var v Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "tokens[0].name", v.Path)
}
