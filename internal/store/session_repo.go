package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyloop/internal/review"
)

// sessionRepo implements SessionRepo.
type sessionRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

func (r *sessionRepo) Append(ctx context.Context, itemID string, s review.StudySession) error {
	return appendSession(ctx, r.db, r.b, itemID, s)
}

func appendSession(ctx context.Context, db execQuerier, b *entsql.DialectBuilder, itemID string, s review.StudySession) error {
	q := b.Insert(StudySessionsTable.Name).
		Columns("item_id", "date", "mastery_gained", "duration_minutes").
		Values(itemID, s.Date.UTC(), s.MasteryGained, s.DurationMinutes)
	if _, err := execQ(ctx, db, q); err != nil {
		return fmt.Errorf("append study session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Recent(ctx context.Context, itemID string, n int) ([]review.StudySession, error) {
	sel := r.b.Select("date", "mastery_gained", "duration_minutes").
		From(entsql.Table(StudySessionsTable.Name)).
		Where(entsql.EQ("item_id", itemID)).
		OrderBy(entsql.Desc("date"), entsql.Desc("id"))
	if n > 0 {
		sel.Limit(n)
	}
	rows, err := queryQ(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query study sessions: %w", err)
	}
	defer rows.Close()

	var sessions []review.StudySession
	for rows.Next() {
		var s review.StudySession
		if err := rows.Scan(&s.Date, &s.MasteryGained, &s.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scan study session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
