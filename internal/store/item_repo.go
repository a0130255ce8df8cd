package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyloop/internal/review"
)

var itemColumns = []string{
	"id", "kind", "subject", "title", "mastery_level", "phase",
	"review_interval", "next_review", "exam_date", "fsrs_state", "version", "created_at",
}

var logColumns = []string{
	"item_id", "date", "rating", "interval_days", "added_to_calendar", "calendar_event_id",
}

// itemRepo implements ItemRepo with ent's dialect-aware SQL builder.
type itemRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

func (r *itemRepo) Create(ctx context.Context, item *review.Item) error {
	fsrs, err := encodeFSRS(item.FSRS)
	if err != nil {
		return err
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.ReviewInterval < review.MinIntervalDays {
		item.ReviewInterval = review.MinIntervalDays
	}
	item.Version = 1

	q := r.b.Insert(ItemsTable.Name).
		Columns(itemColumns...).
		Values(
			item.ID, string(item.Kind), item.Subject, item.Title, item.MasteryLevel, string(item.Phase),
			item.ReviewInterval, nullTime(item.NextReview), nullTime(item.ExamDate), fsrs, item.Version, item.CreatedAt.UTC(),
		)
	if _, err := execQ(ctx, r.db, q); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *itemRepo) Get(ctx context.Context, id string) (*review.Item, error) {
	items, err := r.query(ctx, r.b.Select(itemColumns...).
		From(entsql.Table(ItemsTable.Name)).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return items[0], nil
}

func (r *itemRepo) List(ctx context.Context, opts ListOpts) ([]*review.Item, error) {
	sel := r.b.Select(itemColumns...).
		From(entsql.Table(ItemsTable.Name)).
		OrderBy("subject", "title")

	var preds []*entsql.Predicate
	if opts.Subject != "" {
		preds = append(preds, entsql.EQ("subject", opts.Subject))
	}
	if opts.Kind != "" {
		preds = append(preds, entsql.EQ("kind", string(opts.Kind)))
	}
	if !opts.DueBefore.IsZero() {
		preds = append(preds, entsql.Or(
			entsql.IsNull("next_review"),
			entsql.LTE("next_review", opts.DueBefore.UTC()),
		))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	items, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *itemRepo) UpdateSchedule(ctx context.Context, id string, version int64, res review.Result) (int64, error) {
	fsrs, err := encodeFSRS(res.FSRS)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	upd := r.b.Update(ItemsTable.Name).
		Set("review_interval", res.IntervalDays).
		Set("next_review", res.NextDate.UTC()).
		Add("version", 1).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("version", version)))
	if fsrs.Valid {
		upd.Set("fsrs_state", fsrs)
	}
	result, err := execQ(ctx, tx, upd)
	if err != nil {
		return 0, fmt.Errorf("update schedule: %w", err)
	}
	if err := r.versioned(ctx, tx, result, id, version); err != nil {
		return 0, err
	}

	if err := r.appendLog(ctx, tx, id, res.Entry); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit schedule: %w", err)
	}
	return version + 1, nil
}

func (r *itemRepo) RecordSession(ctx context.Context, id string, version int64, s review.StudySession, mastery int) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := execQ(ctx, tx, r.b.Update(ItemsTable.Name).
		Set("mastery_level", mastery).
		Add("version", 1).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("version", version))))
	if err != nil {
		return 0, fmt.Errorf("update mastery: %w", err)
	}
	if err := r.versioned(ctx, tx, result, id, version); err != nil {
		return 0, err
	}

	if err := appendSession(ctx, tx, r.b, id, s); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit session: %w", err)
	}
	return version + 1, nil
}

func (r *itemRepo) SetMastery(ctx context.Context, id string, mastery int) error {
	return r.set(ctx, id, "mastery_level", mastery)
}

func (r *itemRepo) SetPhase(ctx context.Context, id string, phase review.Phase) error {
	return r.set(ctx, id, "phase", string(phase))
}

func (r *itemRepo) SetExamDate(ctx context.Context, id string, date *time.Time) error {
	return r.set(ctx, id, "exam_date", nullTime(date))
}

func (r *itemRepo) SetCalendarEvent(ctx context.Context, id string, index int, eventID string) error {
	rows, err := queryQ(ctx, r.db, r.b.Select("id").
		From(entsql.Table(ReviewLogsTable.Name)).
		Where(entsql.EQ("item_id", id)).
		OrderBy("sequence").
		Limit(1).
		Offset(index))
	if err != nil {
		return fmt.Errorf("find review log: %w", err)
	}
	var logID int64
	found := rows.Next()
	if found {
		err = rows.Scan(&logID)
	}
	rows.Close()
	if err != nil {
		return fmt.Errorf("scan review log: %w", err)
	}
	if !found {
		return fmt.Errorf("review log %d of item %s: %w", index, id, ErrNotFound)
	}

	_, err = execQ(ctx, r.db, r.b.Update(ReviewLogsTable.Name).
		Set("calendar_event_id", sql.NullString{String: eventID, Valid: eventID != ""}).
		Set("added_to_calendar", eventID != "").
		Where(entsql.EQ("id", logID)))
	if err != nil {
		return fmt.Errorf("link calendar event: %w", err)
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Foreign keys cascade too; deleting children explicitly keeps SQLite
	// connections opened without the pragma consistent.
	for _, table := range []string{ReviewLogsTable.Name, StudySessionsTable.Name} {
		if _, err := execQ(ctx, tx, r.b.Delete(table).Where(entsql.EQ("item_id", id))); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := execQ(ctx, tx, r.b.Delete(ItemsTable.Name).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("item %s: %w", id, err)
	}
	return tx.Commit()
}

// set updates one column and bumps the version so concurrent schedule
// writes notice the change.
func (r *itemRepo) set(ctx context.Context, id, column string, value any) error {
	res, err := execQ(ctx, r.db, r.b.Update(ItemsTable.Name).
		Set(column, value).
		Add("version", 1).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("item %s: %w", id, err)
	}
	return nil
}

// versioned maps a zero-row conditional update to ErrConflict when the item
// still exists, ErrNotFound otherwise.
func (r *itemRepo) versioned(ctx context.Context, tx *sql.Tx, result sql.Result, id string, version int64) error {
	if err := expectOne(result); err == nil {
		return nil
	}
	if exists, err := r.exists(ctx, tx, id); err == nil && exists {
		return fmt.Errorf("item %s at version %d: %w", id, version, ErrConflict)
	}
	return fmt.Errorf("item %s: %w", id, ErrNotFound)
}

func (r *itemRepo) exists(ctx context.Context, db execQuerier, id string) (bool, error) {
	rows, err := queryQ(ctx, db, r.b.Select("id").
		From(entsql.Table(ItemsTable.Name)).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

func (r *itemRepo) appendLog(ctx context.Context, tx *sql.Tx, itemID string, l review.ReviewLog) error {
	seq, err := r.seq.Next(ctx, tx)
	if err != nil {
		return err
	}
	q := r.b.Insert(ReviewLogsTable.Name).
		Columns(append([]string{"sequence"}, logColumns...)...).
		Values(seq, itemID, l.Date.UTC(), int(l.Rating), l.Interval, l.AddedToCalendar,
			sql.NullString{String: l.CalendarEventID, Valid: l.CalendarEventID != ""})
	if _, err := execQ(ctx, tx, q); err != nil {
		return fmt.Errorf("append review log: %w", err)
	}
	return nil
}

// query scans items and attaches their logs in one extra round trip.
func (r *itemRepo) query(ctx context.Context, sel *entsql.Selector) ([]*review.Item, error) {
	rows, err := queryQ(ctx, r.db, sel)
	if err != nil {
		return nil, err
	}
	var (
		items []*review.Item
		byID  = make(map[string]*review.Item)
		ids   []any
	)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, it)
		byID[it.ID] = it
		ids = append(ids, it.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	logRows, err := queryQ(ctx, r.db, r.b.Select(logColumns...).
		From(entsql.Table(ReviewLogsTable.Name)).
		Where(entsql.In("item_id", ids...)).
		OrderBy("sequence"))
	if err != nil {
		return nil, fmt.Errorf("query review logs: %w", err)
	}
	defer logRows.Close()
	for logRows.Next() {
		var (
			itemID string
			l      review.ReviewLog
			rating int
			event  sql.NullString
		)
		if err := logRows.Scan(&itemID, &l.Date, &rating, &l.Interval, &l.AddedToCalendar, &event); err != nil {
			return nil, fmt.Errorf("scan review log: %w", err)
		}
		l.Rating = review.Rating(rating)
		l.CalendarEventID = event.String
		if it, ok := byID[itemID]; ok {
			it.Logs = append(it.Logs, l)
		}
	}
	return items, logRows.Err()
}

func scanItem(rows *sql.Rows) (*review.Item, error) {
	var (
		it         review.Item
		kind       string
		phase      string
		nextReview sql.NullTime
		examDate   sql.NullTime
		fsrs       sql.NullString
	)
	err := rows.Scan(&it.ID, &kind, &it.Subject, &it.Title, &it.MasteryLevel, &phase,
		&it.ReviewInterval, &nextReview, &examDate, &fsrs, &it.Version, &it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	it.Kind = review.Kind(kind)
	it.Phase = review.Phase(phase)
	if nextReview.Valid {
		t := nextReview.Time
		it.NextReview = &t
	}
	if examDate.Valid {
		t := examDate.Time
		it.ExamDate = &t
	}
	if it.FSRS, err = decodeFSRS(fsrs); err != nil {
		return nil, err
	}
	return &it, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func encodeFSRS(st *review.FSRSState) (sql.NullString, error) {
	if st == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(st)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal fsrs state: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeFSRS(s sql.NullString) (*review.FSRSState, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var st review.FSRSState
	if err := json.Unmarshal([]byte(s.String), &st); err != nil {
		return nil, fmt.Errorf("unmarshal fsrs state: %w", err)
	}
	return &st, nil
}
