package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quantara/edgescan/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// writeJSON encodes v and writes it with the given status. Encoding is done
// up front so a marshal failure can still produce a clean 500 instead of a
// truncated body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseListOpts reads ?limit= and ?offset= for the history endpoints,
// clamping limit to [1, maxPageSize]. Unparsable values fall back to the
// defaults rather than erroring.
func parseListOpts(r *http.Request) domain.ListOpts {
	q := r.URL.Query()
	opts := domain.ListOpts{Limit: defaultPageSize}

	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		opts.Limit = min(n, maxPageSize)
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		opts.Offset = n
	}
	return opts
}

// pathParam reads a {name} segment from the route pattern.
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
