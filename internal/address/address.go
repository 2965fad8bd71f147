package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	Prefix    = "0x"
	HexLength = 2 * common.AddressLength
)

var ErrInvalidAddress = errors.New("not a valid address")

type InvalidAddressError struct {
	Input  string
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("%q is not a valid address: %s", e.Input, e.Reason)
}

func (e *InvalidAddressError) Unwrap() error {
	return ErrInvalidAddress
}

// HasPrefix reports whether s is a candidate for checksumming. Strings without
// the lowercase 0x prefix are left alone by every caller.
func HasPrefix(s string) bool {
	return strings.HasPrefix(s, Prefix)
}

// Checksum returns the EIP-55 mixed-case form of a 0x-prefixed hex address.
func Checksum(s string) (string, error) {
	if !HasPrefix(s) {
		return "", &InvalidAddressError{Input: s, Reason: "missing 0x prefix"}
	}

	body := s[len(Prefix):]
	if len(body) != HexLength {
		return "", &InvalidAddressError{
			Input:  s,
			Reason: fmt.Sprintf("expected %d hex characters, got %d", HexLength, len(body)),
		}
	}
	for i := 0; i < len(body); i++ {
		if !isHexChar(body[i]) {
			return "", &InvalidAddressError{
				Input:  s,
				Reason: fmt.Sprintf("invalid hex character %q at position %d", body[i], i+len(Prefix)),
			}
		}
	}

	if !common.IsHexAddress(s) {
		return "", &InvalidAddressError{Input: s, Reason: "rejected by hex decoder"}
	}
	return common.HexToAddress(s).Hex(), nil
}

// IsChecksummed reports whether s is already in canonical form.
func IsChecksummed(s string) bool {
	canonical, err := Checksum(s)
	return err == nil && canonical == s
}

func isHexChar(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
