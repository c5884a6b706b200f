// Package types defines the wire DTOs exchanged between the chain watcher
// and the prover service: ProveRequest, ProveResult, and the flexible byte
// encoding those carry.
package types

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ProofBytes accepts 0x-hex, base64, or integer-array JSON encodings on
// unmarshal, and always emits 0x-hex on marshal.
type ProofBytes []byte

func (p *ProofBytes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if data[0] == '[' {
		var ints []int
		if err := json.Unmarshal(data, &ints); err != nil {
			return fmt.Errorf("proof array must contain integers: %w", err)
		}
		buf := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return fmt.Errorf("proof byte out of range: %d", v)
			}
			buf[i] = byte(v)
		}
		*p = ProofBytes(buf)
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("proof string invalid: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = nil
			return nil
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			decoded, err := hexutil.Decode(s)
			if err != nil {
				return fmt.Errorf("proof hex decode failed: %w", err)
			}
			*p = ProofBytes(decoded)
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("proof base64 decode failed: %w", err)
		}
		*p = ProofBytes(decoded)
		return nil
	}
	return fmt.Errorf("unsupported proof encoding")
}

func (p ProofBytes) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(hexutil.Encode(p))
}

// Bytes returns the underlying slice without copying.
func (p ProofBytes) Bytes() []byte {
	return p
}

// Empty reports whether the proof payload is absent.
func (p ProofBytes) Empty() bool {
	return len(p) == 0
}
