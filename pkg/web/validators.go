package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// QueryIntGte reads an optional integer query parameter that must be >= min. Absent means def.
func QueryIntGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, min int64, def int) (int, bool) {
	return QueryIntBetween(r, w, logger, key, min, maxQueryInt, def)
}

// QueryIntGt reads an optional integer query parameter that must be > min. Absent means def.
func QueryIntGt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, min int64, def int) (int, bool) {
	return QueryIntBetween(r, w, logger, key, min+1, maxQueryInt, def)
}

const maxQueryInt = 1<<31 - 1

// QueryIntBetween reads an optional integer query parameter within [lo, hi]. Absent means def.
// An out-of-range or malformed value is answered with 400 and false is returned.
func QueryIntBetween(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, lo, hi int64, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < lo || v > hi {
		logger.WarnContext(r.Context(), "Invalid query parameter", "key", key, "value", raw)
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return int(v), true
}
