// Package chunk decodes the binary chunk-list encoding carried in a
// commitBatch transaction's calldata into per-chunk lists of L2 block
// numbers. The format packs a block count followed by fixed-size block
// slots; this package reimplements it as a pure, dependency-free function.
package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// blockHeaderSize is the size in bytes of one block's slot within a chunk:
// an 8-byte big-endian block number followed by 52 opaque bytes.
const blockHeaderSize = 60

// blockNumberOffset is the offset of the block number within a block slot.
const blockNumberOffset = 1

// ErrInvalidChunk is returned for any chunk whose encoding is malformed.
var ErrInvalidChunk = errors.New("chunk: invalid chunk encoding")

// ErrEmptyChunks is returned when the outer chunk list is empty.
var ErrEmptyChunks = errors.New("chunk: chunks list is empty")

// Decode parses the chunk-list binary format into per-chunk block-number
// lists. It never returns a partial result: any malformed chunk fails the
// whole call with ErrInvalidChunk (wrapped with the failing chunk's index).
func Decode(chunks [][]byte) ([][]uint64, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyChunks
	}

	out := make([][]uint64, 0, len(chunks))
	for i, raw := range chunks {
		blocks, err := decodeChunk(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %w", ErrInvalidChunk, i, err)
		}
		out = append(out, blocks)
	}
	return out, nil
}

func decodeChunk(raw []byte) ([]uint64, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("buffer too short to hold block count")
	}

	n := int(raw[0])
	if n < 1 {
		return nil, fmt.Errorf("block count must be at least 1, got %d", n)
	}

	want := 1 + blockHeaderSize*n
	if len(raw) < want {
		return nil, fmt.Errorf("buffer length %d shorter than required %d for %d blocks", len(raw), want, n)
	}

	blocks := make([]uint64, n)
	for i := 0; i < n; i++ {
		slotStart := blockHeaderSize*i + blockNumberOffset
		blocks[i] = binary.BigEndian.Uint64(raw[slotStart : slotStart+8])
	}
	return blocks, nil
}

// Encode is the inverse of Decode, used by tests to build calldata-shaped
// fixtures. The opaque 52 trailing bytes of each block slot are left zeroed.
func Encode(chunks [][]uint64) [][]byte {
	out := make([][]byte, len(chunks))
	for i, blocks := range chunks {
		buf := make([]byte, 1+blockHeaderSize*len(blocks))
		buf[0] = byte(len(blocks))
		for j, bn := range blocks {
			slotStart := blockHeaderSize*j + blockNumberOffset
			binary.BigEndian.PutUint64(buf[slotStart:slotStart+8], bn)
		}
		out[i] = buf
	}
	return out
}
