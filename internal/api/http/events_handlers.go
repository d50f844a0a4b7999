package http

import (
	"net/http"
	"strconv"

	syncx "github.com/opoprep/opoprep-engine/internal/sync"
)

// GET /admin/events?after=&limit= — tail of the session audit trail.
func EventsTailHandler(repo *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		after, _ := strconv.ParseInt(q.Get("after"), 10, 64)
		limit, err := intParam(q.Get("limit"), 100)
		if err != nil || limit > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 0 and 1000")
			return
		}
		events, err := repo.Tail(r.Context(), after, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		type row struct {
			Offset    int64  `json:"offset"`
			Type      string `json:"type"`
			Key       string `json:"key"`
			Data      string `json:"data"`
			CreatedAt int64  `json:"created_at"`
		}
		out := make([]row, len(events))
		for i, e := range events {
			out[i] = row{e.Offset, e.Type, e.Key, e.DataJSON, e.CreatedAt}
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool  `json:"success"`
			Events  []row `json:"events"`
		}{true, out})
	}
}
