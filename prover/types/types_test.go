package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProveRequest_Validate(t *testing.T) {
	cases := []struct {
		name    string
		req     ProveRequest
		wantErr string
	}{
		{"empty chunks", ProveRequest{Chunks: nil, RPC: "http://x"}, "chunks is empty"},
		{"empty blocks", ProveRequest{Chunks: [][]uint64{{1}, {}}, RPC: "http://x"}, "blocks is empty"},
		{"bad rpc scheme", ProveRequest{Chunks: [][]uint64{{1}}, RPC: "ftp://x"}, "invalid rpc url"},
		{"valid", ProveRequest{Chunks: [][]uint64{{1}, {2, 3}}, RPC: "http://x"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestProveResult_Ready(t *testing.T) {
	var r ProveResult
	require.False(t, r.Ready())

	r.ProofData = ProofBytes{0x01}
	require.False(t, r.Ready())

	r.PiData = ProofBytes{0x02}
	require.True(t, r.Ready())
}

func TestProofBytes_MarshalRoundTrip(t *testing.T) {
	orig := ProofBytes{0xde, 0xad, 0xbe, 0xef}
	data, err := json.Marshal(orig)
	require.NoError(t, err)
	require.Equal(t, `"0xdeadbeef"`, string(data))

	var decoded ProofBytes
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, orig, decoded)
}

func TestProofBytes_UnmarshalIntArray(t *testing.T) {
	var p ProofBytes
	require.NoError(t, json.Unmarshal([]byte("[222,173,190,239]"), &p))
	require.Equal(t, ProofBytes{0xde, 0xad, 0xbe, 0xef}, p)
}

func TestProofBytes_UnmarshalBase64(t *testing.T) {
	var p ProofBytes
	require.NoError(t, json.Unmarshal([]byte(`"3q2+7w=="`), &p))
	require.Equal(t, ProofBytes{0xde, 0xad, 0xbe, 0xef}, p)
}

func TestProofBytes_UnmarshalNull(t *testing.T) {
	var p ProofBytes
	require.NoError(t, json.Unmarshal([]byte("null"), &p))
	require.True(t, p.Empty())
}
