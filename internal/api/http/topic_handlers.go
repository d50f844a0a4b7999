package http

import (
	"errors"
	"net/http"

	"github.com/opoprep/opoprep-engine/internal/syllabus"
)

// GET /resolve-topic?articleId=... | lawId=...&articleNumber=... | lawShortName=...&articleNumber=...
// Optional: positionType narrows the scope table to one oposición.
//
// An article no scope covers is a normal "confidence: none" answer, never an
// error.
func ResolveTopicHandler(resolver *syllabus.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ref := syllabus.Reference{
			ArticleID:     q.Get("articleId"),
			LawID:         q.Get("lawId"),
			LawShortName:  q.Get("lawShortName"),
			ArticleNumber: q.Get("articleNumber"),
			PositionType:  q.Get("positionType"),
		}
		res, err := resolver.ResolveTopic(r.Context(), ref)
		if err != nil {
			if errors.Is(err, syllabus.ErrBadReference) {
				writeError(w, http.StatusBadRequest, "articleId, or lawId/lawShortName plus articleNumber, is required")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success      bool                `json:"success"`
			TopicNumbers []int               `json:"topicNumbers"`
			Confidence   syllabus.Confidence `json:"confidence"`
		}{true, res.TopicNumbers, res.Confidence})
	}
}
