package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rollupwatch/prove-responder/metrics"
	"github.com/rollupwatch/prove-responder/prover/queue"
	"github.com/rollupwatch/prove-responder/prover/store"
	"github.com/rollupwatch/prove-responder/prover/types"
	"github.com/rollupwatch/prove-responder/server/api"
)

type handlers struct {
	queue   *queue.Queue
	store   *store.Store
	log     zerolog.Logger
	metrics *metrics.ProverMetrics
}

// proveBatch handles /prove_batch admission. The body is validated, the
// store is checked for an already-proved batch, and the queue's
// try-enqueue is the single critical section that makes the "Proving"
// check and the push atomic.
func (h *handlers) proveBatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		h.respondVerdict(w, types.VerdictEmptyRequest)
		return
	}

	var req types.ProveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondVerdict(w, types.VerdictDeserializeFailed)
		return
	}

	if verdict := req.Validate(); verdict != nil {
		h.respondVerdict(w, verdict.Error())
		return
	}

	if h.store.IsProved(req.BatchIndex) {
		h.respondVerdict(w, types.VerdictProved)
		return
	}

	if !h.queue.TryEnqueue(req) {
		h.respondVerdict(w, types.VerdictProving)
		return
	}

	h.metrics.QueueDepth.Set(float64(h.queue.Len()))
	h.respondVerdict(w, types.VerdictStarted)
}

func (h *handlers) respondVerdict(w http.ResponseWriter, verdict string) {
	h.metrics.RequestsTotal.WithLabelValues(verdict).Inc()
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(verdict))
}

// queryProof handles /query_proof: the body is a decimal batch_index; the
// response is the ProveResult read straight off disk.
func (h *handlers) queryProof(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	batchIndex, err := strconv.ParseUint(string(body), 10, 64)
	if err != nil {
		http.Error(w, "invalid batch_index", http.StatusBadRequest)
		return
	}

	proofData, piData, errMsg := h.store.ReadResult(batchIndex)
	result := types.ProveResult{
		ErrorMsg:  errMsg,
		ProofData: proofData,
		PiData:    piData,
	}

	api.WriteJSON(w, http.StatusOK, result)
}

// queryStatus handles /query_status: "0" if the queue is empty, else
// "1". The body is ignored; status is derived purely from queue state.
func (h *handlers) queryStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if h.queue.Len() == 0 {
		_, _ = w.Write([]byte("0"))
		return
	}
	_, _ = w.Write([]byte("1"))
}
