package tokenlist

import (
	"fmt"
	"time"

	"github.com/terminally-online/tokenlist/internal/address"
)

type Options struct {
	// Now stamps modified or newly identified tokens. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

type NormalizeResult struct {
	// Modified holds the indices of tokens with at least one rewritten
	// address, in document order.
	Modified []int
}

// Normalize returns a copy of doc with every oracle source address and
// contract address that starts with 0x rewritten to its checksummed form.
// Tokens whose addresses really changed get a fresh timestamp. doc itself is
// never modified, so a failure leaves nothing half-applied.
func Normalize(doc *Document, opts Options) (*Document, NormalizeResult, error) {
	tokens, err := doc.Tokens()
	if err != nil {
		return nil, NormalizeResult{}, err
	}

	out := doc.Clone()
	now := FormatTimestamp(opts.now())

	var res NormalizeResult
	for _, tok := range tokens {
		edits, err := addressEdits(tok)
		if err != nil {
			return nil, NormalizeResult{}, err
		}
		if len(edits) == 0 {
			continue
		}

		for _, e := range edits {
			if err := out.set(e.path, e.value); err != nil {
				return nil, NormalizeResult{}, err
			}
		}
		if err := out.set(tok.jsonPath(FieldTimestamp), now); err != nil {
			return nil, NormalizeResult{}, err
		}
		res.Modified = append(res.Modified, tok.Index)
	}

	return out, res, nil
}

type edit struct {
	path  string
	value string
}

// addressEdits lists the addresses of tok whose checksummed form differs from
// what is stored.
func addressEdits(tok *Token) ([]edit, error) {
	var edits []edit

	if sources, ok := tok.Sources(); ok {
		for j, raw := range sources {
			src, err := DecodeSource(raw)
			if err != nil {
				continue
			}
			oracle, ok := src.(*OracleSource)
			if !ok {
				continue
			}
			addr, ok := oracle.Address()
			if !ok || !address.HasPrefix(addr) {
				continue
			}
			canonical, err := address.Checksum(addr)
			if err != nil {
				return nil, fmt.Errorf("%s[%d].data.address: %w", tok.Field(FieldSources), j, err)
			}
			if canonical != addr {
				edits = append(edits, edit{
					path:  tok.jsonPath(fmt.Sprintf("%s.%d.data.address", FieldSources, j)),
					value: canonical,
				})
			}
		}
	}

	if contracts, ok := tok.Contracts(); ok {
		for j, raw := range contracts {
			c, err := DecodeContract(raw)
			if err != nil {
				continue
			}
			addr, ok := c.Address()
			if !ok || !address.HasPrefix(addr) {
				continue
			}
			canonical, err := address.Checksum(addr)
			if err != nil {
				return nil, fmt.Errorf("%s[%d].address: %w", tok.Field(FieldContracts), j, err)
			}
			if canonical != addr {
				edits = append(edits, edit{
					path:  tok.jsonPath(fmt.Sprintf("%s.%d.address", FieldContracts, j)),
					value: canonical,
				})
			}
		}
	}

	return edits, nil
}
