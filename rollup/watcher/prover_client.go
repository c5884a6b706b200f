// Package watcher implements the Chain Watcher: the long-running loop that
// discovers L1 challenges, recovers the challenged batch from the
// commitBatch calldata, drives the prover service, and lands proveState.
// Each iteration processes a single challenge to completion before
// returning to the poll loop, so the on-chain state is always re-read
// fresh rather than carried across iterations.
package watcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rollupwatch/prove-responder/prover/types"
)

// ProverClient is the HTTP client the watcher uses to talk to the prover
// service: plain-text admission verdicts from /prove_batch, and a decimal
// batch_index request body against /query_proof.
type ProverClient struct {
	baseURL string
	http    *http.Client
}

// NewProverClient builds a client against the prover service's base URL
// (e.g. "http://localhost:3030").
func NewProverClient(baseURL string, httpClient *http.Client) *ProverClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ProverClient{baseURL: baseURL, http: httpClient}
}

// SubmitProveBatch POSTs a ProveRequest to /prove_batch and returns the raw
// admission verdict string.
func (c *ProverClient) SubmitProveBatch(ctx context.Context, req types.ProveRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("watcher: failed to marshal prove request: %w", err)
	}

	verdict, err := c.post(ctx, "/prove_batch", body)
	if err != nil {
		return "", err
	}
	return verdict, nil
}

// QueryProof POSTs the decimal batch_index to /query_proof and decodes the
// ProveResult JSON response.
func (c *ProverClient) QueryProof(ctx context.Context, batchIndex uint64) (types.ProveResult, error) {
	body := []byte(strconv.FormatUint(batchIndex, 10))

	respBody, err := c.postRaw(ctx, "/query_proof", body)
	if err != nil {
		return types.ProveResult{}, err
	}

	var result types.ProveResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return types.ProveResult{}, fmt.Errorf("watcher: failed to decode query_proof response: %w", err)
	}
	return result, nil
}

func (c *ProverClient) post(ctx context.Context, path string, body []byte) (string, error) {
	respBody, err := c.postRaw(ctx, path, body)
	if err != nil {
		return "", err
	}
	return string(respBody), nil
}

func (c *ProverClient) postRaw(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("watcher: failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watcher: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("watcher: failed to read response from %s: %w", path, err)
	}
	return respBody, nil
}
