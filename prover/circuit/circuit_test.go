package circuit

import (
	"testing"

	"github.com/rollupwatch/prove-responder/prover/types"
	"github.com/stretchr/testify/require"
)

func TestReferenceProver_ProveChunk_Deterministic(t *testing.T) {
	p := NewReferenceProver()
	traces := []types.BlockTrace{{BlockNumber: 1, Raw: []byte("trace-a")}}

	p1, err := p.ProveChunk(traces)
	require.NoError(t, err)
	p2, err := p.ProveChunk(traces)
	require.NoError(t, err)

	require.Equal(t, p1.ChunkHash, p2.ChunkHash)
	require.Equal(t, p1.Proof, p2.Proof)
	require.NotEmpty(t, p1.Proof)
}

func TestReferenceProver_ProveChunk_RejectsEmpty(t *testing.T) {
	p := NewReferenceProver()
	_, err := p.ProveChunk(nil)
	require.Error(t, err)
}

func TestReferenceProver_ProveBatch_Aggregates(t *testing.T) {
	p := NewReferenceProver()
	c1, _ := p.ProveChunk([]types.BlockTrace{{Raw: []byte("a")}})
	c2, _ := p.ProveChunk([]types.BlockTrace{{Raw: []byte("b")}})

	proofData, piData, err := p.ProveBatch([]types.ChunkProof{c1, c2})
	require.NoError(t, err)
	require.NotEmpty(t, proofData)
	require.NotEmpty(t, piData)

	// Order matters: reversing chunk order must change the aggregate.
	proofData2, _, err := p.ProveBatch([]types.ChunkProof{c2, c1})
	require.NoError(t, err)
	require.NotEqual(t, proofData, proofData2)
}

func TestReferenceProver_ProveBatch_RejectsEmpty(t *testing.T) {
	p := NewReferenceProver()
	_, _, err := p.ProveBatch(nil)
	require.Error(t, err)
}

func TestReferenceProver_GenerateVerifier(t *testing.T) {
	p := NewReferenceProver()
	src, err := p.GenerateVerifier([]byte("proof"))
	require.NoError(t, err)
	require.Contains(t, string(src), "contract Verifier")
}

func TestReferenceProver_GenerateVerifier_RejectsEmpty(t *testing.T) {
	p := NewReferenceProver()
	_, err := p.GenerateVerifier(nil)
	require.Error(t, err)
}
