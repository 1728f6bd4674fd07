// Package base62 converts non-negative integer ids to short alphanumeric
// codes and back.
//
// The alphabet is digits, then lower case, then upper case letters. Encoding
// produces the shortest representation of an id (no leading zero symbols),
// so Encode and Decode are exact inverses over all uint64 values.
package base62

import (
	"errors"
	"math"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const base = uint64(len(alphabet))

// ErrInvalidCode is returned by Decode for empty input, symbols outside the
// alphabet, or values that do not fit in a uint64.
var ErrInvalidCode = errors.New("invalid code")

// maxEncodedLen is the length of Encode(math.MaxUint64).
const maxEncodedLen = 11

var symbolValues [256]int8

func init() {
	for i := range symbolValues {
		symbolValues[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		symbolValues[alphabet[i]] = int8(i)
	}
}

// Encode returns the base62 code for id. Encode(0) is "0".
func Encode(id uint64) string {
	if id == 0 {
		return alphabet[:1]
	}

	var buf [maxEncodedLen]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = alphabet[id%base]
		id /= base
	}
	return string(buf[i:])
}

// Decode returns the id encoded by code.
func Decode(code string) (uint64, error) {
	if code == "" || len(code) > maxEncodedLen {
		return 0, ErrInvalidCode
	}

	var id uint64
	for i := 0; i < len(code); i++ {
		v := symbolValues[code[i]]
		if v < 0 {
			return 0, ErrInvalidCode
		}
		if id > (math.MaxUint64-uint64(v))/base {
			return 0, ErrInvalidCode
		}
		id = id*base + uint64(v)
	}
	return id, nil
}

// IsValid reports whether code decodes to an id.
func IsValid(code string) bool {
	_, err := Decode(code)
	return err == nil
}
