package tokenlist

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	oracleAddr   = "0x52908400098527886E0F7030069857D2E4169EE7"
	contractAddr = "0x8617E340B3D01FA5F11F306F4090FD50E238070D"
	stamp        = "2024-01-01T00:00:00.000Z"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 535_000_000, time.UTC)

func fixedClock() Options {
	return Options{Now: func() time.Time { return fixedNow }}
}

// tokenJSON renders a well-formed token. Overrides replace whole fields by
// raw JSON; an empty override removes the field.
func tokenJSON(symbol string, overrides map[string]string) string {
	fields := []struct{ key, val string }{
		{"name", `"` + symbol + ` Token"`},
		{"symbol", `"` + symbol + `"`},
		{"sources", `[{"type":"oracle","data":{"chainId":1,"address":"` + oracleAddr + `","decimals":18}},{"type":"coingecko","data":"` + strings.ToLower(symbol) + `"}]`},
		{"contracts", `[{"chain":"1","address":"` + contractAddr + `","decimals":18}]`},
		{"timestamp", `"` + stamp + `"`},
	}

	var parts []string
	seen := map[string]bool{}
	for _, f := range fields {
		seen[f.key] = true
		val := f.val
		if o, ok := overrides[f.key]; ok {
			val = o
		}
		if val == "" {
			continue
		}
		parts = append(parts, `"`+f.key+`":`+val)
	}
	for k, v := range overrides {
		if !seen[k] && v != "" {
			parts = append(parts, `"`+k+`":`+v)
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func listJSON(tokens ...string) string {
	return `{"name":"Example List","version":{"major":1,"minor":0},"tokens":[` + strings.Join(tokens, ",") + `]}`
}

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func mustToken(t *testing.T, doc *Document, i int) *Token {
	t.Helper()
	tokens, err := doc.Tokens()
	require.NoError(t, err)
	require.Greater(t, len(tokens), i)
	return tokens[i]
}
