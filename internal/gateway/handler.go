package gateway

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mediagate/mediagate/internal/metrics"
	"github.com/mediagate/mediagate/internal/throttle"
	"github.com/mediagate/mediagate/pkg/gateerrors"
	"github.com/mediagate/mediagate/pkg/types"
)

// Handler serves media objects from the backing store. A request walks
// through extension resolution, the negative lookup cache, range
// parsing, the upstream fetch, header assembly and finally budgeted
// streaming. Filenames outside the allow-list are handed to the next
// handler untouched.
type Handler struct {
	store    types.ObjectStore
	resolver *MediaResolver
	negCache *NegativeCache
	budget   *throttle.Budget
	metrics  *metrics.Collector
	logger   *slog.Logger

	cacheMaxAge time.Duration
	next        http.Handler
}

// NewHandler wires the gateway data path. next receives requests whose
// filename the resolver does not handle; if nil those get a plain 404.
func NewHandler(store types.ObjectStore, resolver *MediaResolver, negCache *NegativeCache,
	budget *throttle.Budget, collector *metrics.Collector, cacheMaxAge time.Duration,
	logger *slog.Logger, next http.Handler) *Handler {

	if logger == nil {
		logger = slog.Default()
	}
	if next == nil {
		next = http.NotFoundHandler()
	}

	return &Handler{
		store:       store,
		resolver:    resolver,
		negCache:    negCache,
		budget:      budget,
		metrics:     collector,
		logger:      logger,
		cacheMaxAge: cacheMaxAge,
		next:        next,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		h.record("method_not_allowed", start)
		return
	}

	filename := chi.URLParam(r, "filename")
	if filename == "" {
		h.next.ServeHTTP(w, r)
		return
	}

	key, handled := h.resolver.Resolve(filename)
	if !handled {
		h.next.ServeHTTP(w, r)
		h.record("passthrough", start)
		return
	}

	logger := h.logger.With("key", key, "method", r.Method)

	if h.negCache.Contains(key) {
		h.metrics.RecordNegCacheLookup(true)
		logger.Debug("negative cache hit")
		http.Error(w, "not found", http.StatusNotFound)
		h.record("not_found_cached", start)
		return
	}
	h.metrics.RecordNegCacheLookup(false)

	rng, err := ParseRangeHeader(r.Header.Get("Range"))
	if err != nil {
		logger.Info("unsatisfiable range", "range", r.Header.Get("Range"), "error", err)
		w.Header().Set("Content-Range", "bytes */*")
		http.Error(w, "requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		h.record("range_unsatisfiable", start)
		return
	}

	obj, err := h.store.Fetch(r.Context(), key, rng)
	if err != nil {
		h.handleFetchError(w, logger, key, err, start)
		return
	}
	defer obj.Body.Close()

	h.writeHeaders(w, key, obj, rng)

	if r.Method == http.MethodHead {
		w.WriteHeader(statusFor(rng))
		h.record("ok_head", start)
		return
	}

	w.WriteHeader(statusFor(rng))
	h.stream(w, logger, obj, start)
}

func (h *Handler) handleFetchError(w http.ResponseWriter, logger *slog.Logger, key string, err error, start time.Time) {
	if gateerrors.IsCode(err, gateerrors.ErrCodeObjectNotFound) {
		h.negCache.Record(key)
		logger.Info("object not found, recorded in negative cache")
		http.Error(w, "not found", http.StatusNotFound)
		h.record("not_found", start)
		return
	}

	if gateerrors.IsCode(err, gateerrors.ErrCodeRangeUnsatisfiable) {
		w.Header().Set("Content-Range", "bytes */*")
		http.Error(w, "requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		h.record("range_unsatisfiable", start)
		return
	}

	logger.Error("upstream fetch failed", "error", err)
	http.Error(w, "internal server error", gateerrors.HTTPStatus(gateerrors.CodeOf(err)))
	h.record("upstream_error", start)
}

func (h *Handler) writeHeaders(w http.ResponseWriter, key string, obj *types.Object, rng *types.ByteRange) {
	header := w.Header()

	header.Set("Content-Type", h.resolver.ContentType(key))
	header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.cacheMaxAge.Seconds())))

	if obj.ContentLength >= 0 {
		header.Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	if obj.ETag != "" {
		header.Set("ETag", obj.ETag)
	}
	if !obj.LastModified.IsZero() {
		header.Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
	}
	if rng != nil {
		header.Set("Accept-Ranges", "bytes")
		if obj.ContentRange != "" {
			header.Set("Content-Range", obj.ContentRange)
		}
	}
}

func (h *Handler) stream(w http.ResponseWriter, logger *slog.Logger, obj *types.Object, start time.Time) {
	h.metrics.StreamStarted()
	defer h.metrics.StreamFinished()

	body := throttle.NewReader(obj.Body, h.budget)
	written, err := io.Copy(w, body)

	h.metrics.RecordBytesStreamed(written)
	h.metrics.UpdateBudgetRemaining(h.budget.Remaining())

	if err != nil {
		// Headers are gone; all that remains is cutting the stream.
		if gateerrors.IsCode(err, gateerrors.ErrCodeQuotaExhausted) {
			h.metrics.RecordThrottleDenial()
			logger.Warn("stream terminated, byte budget exhausted", "written", written)
			h.record("interrupted_budget", start)
			return
		}
		if errors.Is(err, io.ErrUnexpectedEOF) || isClientGone(err) {
			logger.Debug("client went away", "written", written)
			h.record("interrupted_client", start)
			return
		}
		logger.Error("stream interrupted", "written", written, "error", err)
		h.record("interrupted_upstream", start)
		return
	}

	h.record("ok", start)
}

func (h *Handler) record(outcome string, start time.Time) {
	h.metrics.RecordRequest(outcome, time.Since(start))
}

func statusFor(rng *types.ByteRange) int {
	if rng != nil {
		return http.StatusPartialContent
	}
	return http.StatusOK
}

// isClientGone reports whether an error from writing the response means
// the client disconnected.
func isClientGone(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, http.ErrAbortHandler) || errors.Is(err, io.ErrClosedPipe)
}
