package syllabus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

var (
	ErrUnknownLaw     = errors.New("syllabus: law not found")
	ErrUnknownArticle = errors.New("syllabus: article not found")
)

// SQLScopeSource reads laws, articles and topic scopes from the relational
// store. Article-number sets are stored as JSON arrays in a TEXT column so the
// same queries run on sqlite and postgres.
type SQLScopeSource struct {
	db *sql.DB
}

func NewSQLScopeSource(db *sql.DB) *SQLScopeSource { return &SQLScopeSource{db: db} }

func (s *SQLScopeSource) ScopesForLaw(ctx context.Context, lawID, positionType string) ([]Scope, error) {
	const q = `SELECT position_type, topic_number, law_id, article_numbers_json
		FROM topic_scopes
		WHERE law_id=$1 AND ($2='' OR position_type=$2)
		ORDER BY topic_number`
	rows, err := s.db.QueryContext(ctx, q, lawID, positionType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Scope
	for rows.Next() {
		var sc Scope
		var numsJSON string
		if err := rows.Scan(&sc.PositionType, &sc.TopicNumber, &sc.LawID, &numsJSON); err != nil {
			return nil, err
		}
		if numsJSON != "" && numsJSON != "null" {
			if err := json.Unmarshal([]byte(numsJSON), &sc.ArticleNumbers); err != nil {
				// malformed scope row: skip it rather than fail the lookup
				continue
			}
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *SQLScopeSource) LawIDByShortName(ctx context.Context, shortName string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM laws WHERE lower(short_name)=lower($1)`, shortName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnknownLaw
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLScopeSource) ArticleRef(ctx context.Context, articleID string) (string, string, error) {
	var lawID, number string
	err := s.db.QueryRowContext(ctx,
		`SELECT law_id, article_number FROM articles WHERE id=$1`, articleID).Scan(&lawID, &number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrUnknownArticle
	}
	if err != nil {
		return "", "", err
	}
	return lawID, number, nil
}
