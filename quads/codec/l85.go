// Package codec holds the byte-level encodings used by snapshots: L85, a
// base-85 variant whose output sorts like its input, and a length-prefixed
// field encoding for terms and quads.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// L85Alphabet is in ascending byte order, which is what makes encoded
// strings compare like the bytes they encode.
const L85Alphabet = "!$%&()+,-./" +
	"0123456789:;<=>@" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ[]_`" +
	"abcdefghijklmnopqrstuvwxyz{}"

var (
	// digit+1 for every alphabet byte, 0 for everything else
	l85Decode [256]byte

	// ErrInvalidCharacter indicates an invalid character in input
	ErrInvalidCharacter = errors.New("invalid L85 character")

	// ErrIncompleteGroup indicates a trailing group of a single character
	ErrIncompleteGroup = errors.New("invalid L85 encoding: incomplete group")
)

func init() {
	for i, c := range L85Alphabet {
		l85Decode[byte(c)] = byte(i + 1)
	}
}

func appendGroup(dst []byte, v uint32, n int) []byte {
	var chars [5]byte
	for j := 4; j >= 0; j-- {
		chars[j] = L85Alphabet[v%85]
		v /= 85
	}
	return append(dst, chars[:n]...)
}

// EncodeL85 encodes bytes to L85. Every 4 bytes become 5 characters; a
// trailing group of k bytes becomes k+1 characters.
func EncodeL85(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	result := make([]byte, 0, len(src)*5/4+5)

	for i := 0; i+4 <= len(src); i += 4 {
		result = appendGroup(result, binary.BigEndian.Uint32(src[i:]), 5)
	}

	if rem := len(src) % 4; rem > 0 {
		var padded [4]byte
		copy(padded[:], src[len(src)-rem:])
		result = appendGroup(result, binary.BigEndian.Uint32(padded[:]), rem+1)
	}
	return string(result)
}

// DecodeL85 decodes an L85 string back to bytes.
func DecodeL85(src string) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}
	for i := 0; i < len(src); i++ {
		if l85Decode[src[i]] == 0 {
			return nil, fmt.Errorf("%w at position %d: %q", ErrInvalidCharacter, i, src[i])
		}
	}

	result := make([]byte, 0, len(src)*4/5+4)
	for i := 0; i+5 <= len(src); i += 5 {
		result = binary.BigEndian.AppendUint32(result, groupValue(src[i:i+5]))
	}

	if rem := len(src) % 5; rem > 0 {
		if rem == 1 {
			return nil, ErrIncompleteGroup
		}
		// Pad with the highest digit: the truncated digits were at most
		// that, and the bytes below the kept ones absorb the difference.
		var padded [5]byte
		copy(padded[:], src[len(src)-rem:])
		for j := rem; j < 5; j++ {
			padded[j] = L85Alphabet[84]
		}
		var out [4]byte
		binary.BigEndian.PutUint32(out[:], groupValue(string(padded[:])))
		result = append(result, out[:rem-1]...)
	}
	return result, nil
}

func groupValue(group string) uint32 {
	v := uint32(0)
	for j := 0; j < 5; j++ {
		v = v*85 + uint32(l85Decode[group[j]]-1)
	}
	return v
}

// EncodeOrdinal encodes n as 10 L85 characters. Ordinals compare as
// strings in numeric order.
func EncodeOrdinal(n uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return EncodeL85(b[:])
}

// DecodeOrdinal is the inverse of EncodeOrdinal.
func DecodeOrdinal(s string) (uint64, error) {
	if len(s) != 10 {
		return 0, fmt.Errorf("expected 10 characters, got %d", len(s))
	}
	b, err := DecodeL85(s)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}
