// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"github.com/pkg/errors"
)

// BlockID identifies a block. The first 4 bytes hold the block number in big endian,
// the rest is taken from the blake2b-256 hash of the block.
type BlockID [32]byte

// NewBlockID computes the id of the block signed by producer in slot on top of parent.
func NewBlockID(parent BlockID, num uint32, slot Slot, producer Name) BlockID {
	var buf [32 + 4 + 4 + 8]byte
	copy(buf[:], parent[:])
	binary.BigEndian.PutUint32(buf[32:], num)
	binary.BigEndian.PutUint32(buf[36:], uint32(slot))
	binary.BigEndian.PutUint64(buf[40:], uint64(producer))

	id := BlockID(blake2b.Sum256(buf[:]))
	binary.BigEndian.PutUint32(id[:], num)
	return id
}

// Num returns the block number embedded in the id.
func (id BlockID) Num() uint32 {
	return binary.BigEndian.Uint32(id[:])
}

// IsZero returns if the id has all zero bytes.
func (id BlockID) IsZero() bool {
	return id == BlockID{}
}

func (id BlockID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// AbbrevString returns abbrev string presentation.
func (id BlockID) AbbrevString() string {
	return fmt.Sprintf("0x%x…%x", id[:4], id[28:])
}

// MarshalText implements encoding.TextMarshaler.
func (id BlockID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *BlockID) UnmarshalText(text []byte) error {
	parsed, err := ParseBlockID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseBlockID parses the hex form of a block id, with or without 0x prefix.
func ParseBlockID(s string) (BlockID, error) {
	switch len(s) {
	case 32 * 2:
	case 32*2 + 2:
		if strings.ToLower(s[:2]) != "0x" {
			return BlockID{}, errors.New("invalid prefix")
		}
		s = s[2:]
	default:
		return BlockID{}, errors.New("invalid length")
	}

	var id BlockID
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return BlockID{}, errors.Wrap(err, "decode block id")
	}
	return id, nil
}
