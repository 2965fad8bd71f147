package tokenlist

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// IDBytes is the amount of entropy in a generated identifier (256 bits).
const IDBytes = 32

type AssignOptions struct {
	Options

	// Rand supplies identifier bytes. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

type AssignResult struct {
	// Assigned holds tokens that received a freshly generated id.
	Assigned []int
	// Adopted holds tokens whose legacy "key" was promoted to "id".
	Adopted []int
}

// AssignIDs returns a copy of doc where every token has an id. Tokens that
// already have one are left alone, timestamp included. A token carrying only
// a legacy "key" has it replaced by an id with the same value. Everything
// else gets a random id and a creation timestamp.
func AssignIDs(doc *Document, opts AssignOptions) (*Document, AssignResult, error) {
	tokens, err := doc.Tokens()
	if err != nil {
		return nil, AssignResult{}, err
	}

	out := doc.Clone()
	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	now := FormatTimestamp(opts.now())

	var res AssignResult
	for _, tok := range tokens {
		if tok.HasID() {
			continue
		}

		if key, ok := stringOf(tok.Get(FieldLegacyKey)); ok && key != "" {
			if err := out.delete(tok.jsonPath(FieldLegacyKey)); err != nil {
				return nil, AssignResult{}, err
			}
			if err := out.set(tok.jsonPath(FieldID), key); err != nil {
				return nil, AssignResult{}, err
			}
			res.Adopted = append(res.Adopted, tok.Index)
			continue
		}

		id, err := NewID(r)
		if err != nil {
			return nil, AssignResult{}, fmt.Errorf("failed to generate id for %s: %w", tok.Path(), err)
		}
		if err := out.set(tok.jsonPath(FieldID), id); err != nil {
			return nil, AssignResult{}, err
		}
		if err := out.set(tok.jsonPath(FieldTimestamp), now); err != nil {
			return nil, AssignResult{}, err
		}
		res.Assigned = append(res.Assigned, tok.Index)
	}

	return out, res, nil
}

func NewID(r io.Reader) (string, error) {
	b := make([]byte, IDBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
