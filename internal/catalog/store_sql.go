package catalog

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/opoprep/opoprep-engine/internal/syllabus"
)

type SQLCatalog struct {
	db *sql.DB
}

func NewSQLCatalog(db *sql.DB) *SQLCatalog { return &SQLCatalog{db: db} }

// QuestionsForTopic returns the active, verified legislative questions whose
// primary article falls inside the topic's scopes. Article-number matching
// happens on canonical tokens in Go, the same normalization the resolver
// uses, because the raw strings in the store are not directly comparable.
func (c *SQLCatalog) QuestionsForTopic(ctx context.Context, positionType string, topicNumber int) ([]Question, error) {
	scopes, err := c.listScopes(ctx, positionType, topicNumber)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var out []Question
	for _, sc := range scopes {
		wanted := map[string]struct{}{}
		for _, num := range sc.ArticleNumbers {
			wanted[syllabus.ParseArticleNumber(num).Canonical()] = struct{}{}
		}
		qs, err := c.questionsForLaw(ctx, sc.LawID)
		if err != nil {
			return nil, err
		}
		for _, q := range qs {
			if len(wanted) > 0 {
				if _, ok := wanted[syllabus.ParseArticleNumber(q.articleNumber).Canonical()]; !ok {
					continue
				}
			}
			if _, dup := seen[q.Question.ID]; dup {
				continue
			}
			seen[q.Question.ID] = struct{}{}
			out = append(out, q.Question)
		}
	}
	return out, nil
}

func (c *SQLCatalog) listScopes(ctx context.Context, positionType string, topicNumber int) ([]syllabus.Scope, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT position_type, topic_number, law_id, article_numbers_json
		 FROM topic_scopes WHERE position_type=$1 AND topic_number=$2`,
		positionType, topicNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []syllabus.Scope
	for rows.Next() {
		var sc syllabus.Scope
		var numsJSON string
		if err := rows.Scan(&sc.PositionType, &sc.TopicNumber, &sc.LawID, &numsJSON); err != nil {
			return nil, err
		}
		if numsJSON != "" && numsJSON != "null" {
			if err := json.Unmarshal([]byte(numsJSON), &sc.ArticleNumbers); err != nil {
				continue // malformed scope row, skip
			}
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

type lawQuestion struct {
	Question
	articleNumber string
}

func (c *SQLCatalog) questionsForLaw(ctx context.Context, lawID string) ([]lawQuestion, error) {
	const q = `SELECT q.id, q.qtype, q.primary_article_id, q.category, q.prompt,
			q.options_json, q.correct_option, q.difficulty, a.article_number
		FROM questions q
		JOIN articles a ON a.id = q.primary_article_id
		WHERE a.law_id=$1 AND q.active AND q.verified`
	rows, err := c.db.QueryContext(ctx, q, lawID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []lawQuestion
	for rows.Next() {
		var lq lawQuestion
		var opts string
		if err := rows.Scan(&lq.ID, &lq.Type, &lq.PrimaryArticleID, &lq.Category, &lq.Prompt,
			&opts, &lq.CorrectOption, &lq.Difficulty, &lq.articleNumber); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &lq.Options); err != nil {
			continue // broken option payload: skip the row, keep the batch
		}
		lq.Active, lq.Verified = true, true
		out = append(out, lq)
	}
	return out, rows.Err()
}

func (c *SQLCatalog) SeenQuestionIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT DISTINCT question_id FROM attempts WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (c *SQLCatalog) RollingAccuracy(ctx context.Context, userID string, window int) (float64, error) {
	if window <= 0 {
		window = 20
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT is_correct FROM attempts WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`,
		userID, window)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	total, correct := 0, 0
	for rows.Next() {
		var ok bool
		if err := rows.Scan(&ok); err != nil {
			return 0, err
		}
		total++
		if ok {
			correct++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if total == 0 {
		return -1, nil
	}
	return float64(correct) / float64(total) * 100, nil
}
