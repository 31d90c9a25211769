// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	// NameMaxLength is the max length of a producer name in string form.
	NameMaxLength = 13

	nameCharmap = ".12345abcdefghijklmnopqrstuvwxyz"
)

// Name is a producer account name packed into 64 bits.
// Up to 12 characters of [.1-5a-z] take 5 bits each, and an optional 13th
// character of [.1-5a-j] takes the remaining 4 bits.
type Name uint64

// ParseName converts the string presented name into Name type.
func ParseName(s string) (Name, error) {
	if len(s) > NameMaxLength {
		return 0, errors.New("name too long")
	}

	var v uint64
	for i := 0; i < len(s); i++ {
		c, ok := charToSymbol(s[i])
		if !ok {
			return 0, errors.New("invalid character in name")
		}
		if i < NameMaxLength-1 {
			v |= (c & 0x1f) << (64 - 5*(i+1))
		} else {
			if c > 0x0f {
				return 0, errors.New("invalid 13th character in name")
			}
			v |= c
		}
	}

	n := Name(v)
	if n.String() != strings.TrimRight(s, ".") {
		return 0, errors.New("name not in normalized form")
	}
	return n, nil
}

// MustParseName parses the name and panics on error.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func charToSymbol(c byte) (uint64, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 6, true
	case c >= '1' && c <= '5':
		return uint64(c-'1') + 1, true
	case c == '.':
		return 0, true
	}
	return 0, false
}

// String implements the stringer interface.
func (n Name) String() string {
	var buf [NameMaxLength]byte
	tmp := uint64(n)
	for i := 0; i < NameMaxLength; i++ {
		mask, shift := uint64(0x1f), 5
		if i == 0 {
			mask, shift = 0x0f, 4
		}
		buf[NameMaxLength-1-i] = nameCharmap[tmp&mask]
		tmp >>= shift
	}
	return strings.TrimRight(string(buf[:]), ".")
}

// IsEmpty returns whether the name is the zero name.
func (n Name) IsEmpty() bool {
	return n == 0
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
