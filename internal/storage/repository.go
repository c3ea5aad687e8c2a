// Package storage implements the records.Store port on SQLite.
//
// Amounts live in a NUMERIC(10,2) column since the cents-to-decimal
// migration; they are bound as canonical two-decimal text and read back
// through a storage-class-tolerant converter, so no float arithmetic ever
// touches the money path. Timestamps are UTC microsecond text, which keeps
// lexicographic and chronological order identical.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"acecheckin/internal/core"
	"acecheckin/internal/records"

	_ "modernc.org/sqlite"
)

// timeLayout is the stored timestamp format: UTC, fixed-width microseconds,
// no zone suffix. Matches the shape of the legacy database.
const timeLayout = "2006-01-02 15:04:05.000000"

type SQLiteRepository struct {
	db *sql.DB
}

var _ records.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateMember(ctx context.Context, params records.CreateMemberParams) (core.Member, error) {
	createdAt := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO members (name, email, phone, created_at) VALUES (?, ?, ?, ?)`,
		params.Name, nullable(params.Email), nullable(params.Phone), createdAt.Format(timeLayout),
	)
	if err != nil {
		return core.Member{}, fmt.Errorf("insert member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Member{}, fmt.Errorf("member insert id: %w", err)
	}

	slog.InfoContext(ctx, "Member saved", "id", id, "name", params.Name)

	return core.Member{
		ID:        id,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		CreatedAt: createdAt,
	}, nil
}

func (r *SQLiteRepository) GetMember(ctx context.Context, id int64) (core.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, created_at FROM members WHERE id = ?`, id)

	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return core.Member{}, records.ErrMemberNotFound
	}
	if err != nil {
		return core.Member{}, fmt.Errorf("get member %d: %w", id, err)
	}
	return m, nil
}

func (r *SQLiteRepository) ListMembers(ctx context.Context, skip, limit int) ([]core.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, phone, created_at FROM members ORDER BY id LIMIT ? OFFSET ?`,
		sqlLimit(limit), sqlOffset(skip),
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []core.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, params records.CreateEntryParams) (core.EntryLog, error) {
	if err := r.requireMember(ctx, params.MemberID); err != nil {
		return core.EntryLog{}, err
	}

	ts := orNow(params.Timestamp)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entry_logs (member_id, timestamp, notes) VALUES (?, ?, ?)`,
		params.MemberID, ts.Format(timeLayout), nullable(params.Notes),
	)
	if err != nil {
		return core.EntryLog{}, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.EntryLog{}, fmt.Errorf("entry insert id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved", "id", id, "member_id", params.MemberID)

	return core.EntryLog{ID: id, MemberID: params.MemberID, Timestamp: ts, Notes: params.Notes}, nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, memberID int64, skip, limit int) ([]core.EntryLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, member_id, timestamp, notes FROM entry_logs
		 WHERE member_id = ? ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`,
		memberID, sqlLimit(limit), sqlOffset(skip),
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.EntryLog
	for rows.Next() {
		var (
			e     core.EntryLog
			ts    string
			notes sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.MemberID, &ts, &notes); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Timestamp, err = parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		e.Notes = notes.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, params records.CreatePaymentParams) (core.PaymentLog, error) {
	if err := r.requireMember(ctx, params.MemberID); err != nil {
		return core.PaymentLog{}, err
	}

	ts := orNow(params.Timestamp)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_logs (member_id, amount, timestamp, notes) VALUES (?, ?, ?, ?)`,
		params.MemberID, params.Amount.String(), ts.Format(timeLayout), nullable(params.Notes),
	)
	if err != nil {
		return core.PaymentLog{}, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.PaymentLog{}, fmt.Errorf("payment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved",
		"id", id,
		"member_id", params.MemberID,
		"amount", params.Amount.String())

	return core.PaymentLog{
		ID:        id,
		MemberID:  params.MemberID,
		Amount:    params.Amount,
		Timestamp: ts,
		Notes:     params.Notes,
	}, nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context, memberID int64, skip, limit int) ([]core.PaymentLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, member_id, amount, timestamp, notes FROM payment_logs
		 WHERE member_id = ? ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`,
		memberID, sqlLimit(limit), sqlOffset(skip),
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []core.PaymentLog
	for rows.Next() {
		var (
			p      core.PaymentLog
			amount any
			ts     string
			notes  sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.MemberID, &amount, &ts, &notes); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount, err = moneyFromColumn(amount)
		if err != nil {
			return nil, fmt.Errorf("payment %d: %w", p.ID, err)
		}
		p.Timestamp, err = parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("payment %d: %w", p.ID, err)
		}
		p.Notes = notes.String
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// requireMember checks the member row exists before a dependent write, so a
// failed create stores nothing.
func (r *SQLiteRepository) requireMember(ctx context.Context, id int64) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM members WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check member %d: %w", id, err)
	}
	if !exists {
		return records.ErrMemberNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (core.Member, error) {
	var (
		m            core.Member
		email, phone sql.NullString
		createdAt    string
	)
	if err := row.Scan(&m.ID, &m.Name, &email, &phone, &createdAt); err != nil {
		return core.Member{}, err
	}
	var err error
	m.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return core.Member{}, err
	}
	m.Email = email.String
	m.Phone = phone.String
	return m, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// nullable maps the empty string to NULL, matching the legacy schema where
// optional fields are nullable.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// sqlLimit translates the port's "negative means unbounded" convention to
// SQLite, where LIMIT -1 is no limit.
func sqlLimit(limit int) int {
	if limit < 0 {
		return -1
	}
	return limit
}

func sqlOffset(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}
