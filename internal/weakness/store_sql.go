package weakness

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/opoprep/opoprep-engine/internal/syllabus"
)

// SQLAttemptSource reads the append-only attempts table and attributes
// articles to topics through the syllabus resolver.
type SQLAttemptSource struct {
	db       *sql.DB
	resolver *syllabus.Resolver
}

func NewSQLAttemptSource(db *sql.DB, resolver *syllabus.Resolver) *SQLAttemptSource {
	return &SQLAttemptSource{db: db, resolver: resolver}
}

func (s *SQLAttemptSource) AttemptsByUser(ctx context.Context, userID, positionType string) ([]Attempt, error) {
	// join through questions so psychometric attempts (no article) drop out
	const q = `SELECT q.primary_article_id, a.is_correct, a.created_at
		FROM attempts a
		JOIN questions q ON q.id = a.question_id
		WHERE a.user_id=$1 AND q.primary_article_id IS NOT NULL AND q.active
		ORDER BY a.created_at`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var unix int64
		if err := rows.Scan(&a.ArticleID, &a.IsCorrect, &unix); err != nil {
			return nil, err
		}
		a.CreatedAt = unixTime(unix)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLAttemptSource) ArticleInfos(ctx context.Context, articleIDs []string, positionType string) (map[string]ArticleInfo, error) {
	out := make(map[string]ArticleInfo, len(articleIDs))
	if len(articleIDs) == 0 {
		return out, nil
	}

	query, args := inQuery(`SELECT id, law_id, article_number FROM articles WHERE id IN `, articleIDs)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var info ArticleInfo
		if err := rows.Scan(&info.ArticleID, &info.LawID, &info.ArticleNumber); err != nil {
			return nil, err
		}
		res, err := s.resolver.ResolveTopic(ctx, syllabus.Reference{
			LawID:         info.LawID,
			ArticleNumber: info.ArticleNumber,
			PositionType:  positionType,
		})
		if err != nil {
			return nil, err
		}
		info.TopicNumbers = res.TopicNumbers
		out[info.ArticleID] = info
	}
	return out, rows.Err()
}

// inQuery expands an IN clause with positional placeholders, which both pgx
// and modernc sqlite accept in the $n form.
func inQuery(prefix string, ids []string) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	return prefix + "(" + strings.Join(ph, ",") + ")", args
}

func unixTime(v int64) time.Time { return time.Unix(v, 0).UTC() }
