package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseValidateGte parses an integer query parameter and requires it to be at
// least min. Writes a 400 response and returns false on failure.
func ParseValidateGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, min int64) (int32, bool) {
	return parseQueryInt(r, w, logger, key, func(v int64) bool { return v >= min })
}

// ParseValidateGt parses an integer query parameter and requires it to be
// strictly greater than min. Writes a 400 response and returns false on failure.
func ParseValidateGt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, min int64) (int32, bool) {
	return parseQueryInt(r, w, logger, key, func(v int64) bool { return v > min })
}

func parseQueryInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, valid func(int64) bool) (int32, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("%s url parameter is required", key))
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || !valid(value) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return int32(value), true
}
