package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/kodict/internal/domain"
	"github.com/heartmarshall/kodict/internal/query"
)

// engineProvider yields the query engine, loading the store on first use.
type engineProvider interface {
	Engine() (*query.Engine, error)
}

// DictionaryHandler serves the lookup, prefix and random endpoints.
type DictionaryHandler struct {
	engines      engineProvider
	defaultLimit int
	maxLimit     int
	log          *slog.Logger
}

// NewDictionaryHandler creates a DictionaryHandler. Prefix searches without
// an explicit limit return defaultLimit matches; larger limits are capped
// at maxLimit.
func NewDictionaryHandler(engines engineProvider, defaultLimit, maxLimit int, log *slog.Logger) *DictionaryHandler {
	return &DictionaryHandler{
		engines:      engines,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		log:          log,
	}
}

// LookupResponse is the body of GET /lookup/{word}.
type LookupResponse struct {
	Found bool          `json:"found"`
	Entry *domain.Entry `json:"entry,omitempty"`
}

// PrefixResponse is the body of GET /prefix/{prefix}.
type PrefixResponse struct {
	Results []query.Match `json:"results"`
}

// Lookup answers GET /lookup/{word}. A miss is a 200 with found=false.
func (h *DictionaryHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	entry, found := e.Lookup(domain.NormalizeKey(r.PathValue("word")))
	if !found {
		writeJSON(w, http.StatusOK, LookupResponse{Found: false})
		return
	}
	writeJSON(w, http.StatusOK, LookupResponse{Found: true, Entry: &entry})
}

// Prefix answers GET /prefix/{prefix}?limit=N.
func (h *DictionaryHandler) Prefix(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	limit = min(limit, h.maxLimit)

	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PrefixResponse{
		Results: e.PrefixSearch(domain.NormalizeKey(r.PathValue("prefix")), limit),
	})
}

// Random answers GET /random with a uniformly chosen entry.
func (h *DictionaryHandler) Random(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	entry, err := e.Random()
	if errors.Is(err, domain.ErrEmptyStore) {
		writeError(w, http.StatusNotFound, domain.ErrEmptyStore.Error())
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "random entry", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// engine writes a 503 and reports false when the store cannot be loaded.
func (h *DictionaryHandler) engine(w http.ResponseWriter, r *http.Request) (*query.Engine, bool) {
	e, err := h.engines.Engine()
	if err != nil {
		h.log.ErrorContext(r.Context(), "store unavailable", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, storeUnavailable)
		return nil, false
	}
	return e, true
}
