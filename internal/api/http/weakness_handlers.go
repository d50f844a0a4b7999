package http

import (
	"net/http"
	"strconv"

	auth "github.com/opoprep/opoprep-engine/internal/auth/middleware"
	"github.com/opoprep/opoprep-engine/internal/rbac"
	"github.com/opoprep/opoprep-engine/internal/weakness"
)

// GET /weak-articles?minAttempts=&maxSuccessRate=&maxPerTopic=&positionType=
//
// Students get their own weak areas; roles holding weakness:view-any may pass
// userId to inspect another learner. Query params override the deployment
// defaults (WEAK_MIN_ATTEMPTS, WEAK_MAX_SUCCESS_PCT, WEAK_MAX_PER_TOPIC).
func WeakArticlesHandler(detector *weakness.Detector, defaults weakness.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		userID := auth.UserIDFromContext(r.Context())
		if requested := q.Get("userId"); requested != "" && requested != userID {
			role := rbac.RoleFromContext(r.Context())
			if !rbac.NewChecker(nil).Has(role, "weakness:view-any") {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			userID = requested
		}
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}

		opts := defaults
		opts.PositionType = q.Get("positionType")
		var err error
		if opts.MinAttempts, err = intParam(q.Get("minAttempts"), defaults.MinAttempts); err != nil {
			writeError(w, http.StatusBadRequest, "minAttempts must be an integer")
			return
		}
		if opts.MaxPerTopic, err = intParam(q.Get("maxPerTopic"), defaults.MaxPerTopic); err != nil {
			writeError(w, http.StatusBadRequest, "maxPerTopic must be an integer")
			return
		}
		if v := q.Get("maxSuccessRate"); v != "" {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil || f < 0 || f > 100 {
				writeError(w, http.StatusBadRequest, "maxSuccessRate must be a percentage between 0 and 100")
				return
			}
			opts.MaxSuccessRatePct = f
		}

		byTopic, err := detector.WeakArticles(r.Context(), userID, opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success             bool                           `json:"success"`
			WeakArticlesByTopic map[int][]weakness.WeakArticle `json:"weakArticlesByTopic"`
		}{true, byTopic})
	}
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errBadInt
	}
	return n, nil
}

var errBadInt = &paramError{"not a non-negative integer"}

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }
