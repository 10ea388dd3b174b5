package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/MindBalance/internal/api"
	"github.com/soaringjerry/MindBalance/internal/wellness"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore implements api.Store on SQLite or PostgreSQL. Queries are written
// with ? placeholders and rebound for postgres.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

var _ api.Store = (*SQLStore)(nil)

func NewSQLiteStore(db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLStore{db: db, dialect: DialectSQLite}, nil
}

func NewPostgresStore(db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	return &SQLStore{db: db, dialect: DialectPostgres}, nil
}

// Open connects to dsn, applies the migrations for dialect and returns the
// store. The caller owns the returned store and must Close it.
func Open(ctx context.Context, dialect Dialect, dsn, migrationsDir string) (*SQLStore, error) {
	driver := ""
	switch dialect {
	case DialectSQLite:
		driver = "sqlite3"
	case DialectPostgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// sqlite serialises writers
		conn.SetMaxOpenConns(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	if err := RunMigrations(conn, dialect, migrationsDir); err != nil {
		_ = conn.Close()
		return nil, err
	}
	var store *SQLStore
	if dialect == DialectSQLite {
		store, err = NewSQLiteStore(conn)
	} else {
		store, err = NewPostgresStore(conn)
	}
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("%s store: %s: %v", s.dialect, prefix, err)
	}
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var le sqlite3.Error
	if errors.As(err, &le) {
		return le.ExtendedCode == sqlite3.ErrConstraintUnique || le.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// rows written by other tools may use plain RFC3339
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

// Users

func (s *SQLStore) AddUser(ctx context.Context, u *api.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (id, name, email, pass_hash, profession, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		u.ID, u.Name, strings.ToLower(u.Email), u.PassHash, u.Profession, formatTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return api.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLStore) scanUser(row *sql.Row) (*api.User, error) {
	var (
		u       api.User
		created string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PassHash, &u.Profession, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("user %s created_at: %w", u.ID, err)
	}
	return &u, nil
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (*api.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, email, pass_hash, profession, created_at FROM users WHERE email = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	u, err := s.scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (*api.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, email, pass_hash, profession, created_at FROM users WHERE id = ?`), id)
	u, err := s.scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *SQLStore) UpdateProfile(ctx context.Context, id, name, profession string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE users SET name = ?, profession = ? WHERE id = ?`), name, profession, id)
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update profile rows: %w", err)
	}
	return n > 0, nil
}

// Assessments

func (s *SQLStore) SaveAssessment(ctx context.Context, a *wellness.Assessment) error {
	if a == nil {
		return errors.New("nil assessment")
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	var seq int64
	err = s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO assessments (id, owner_id, mode, answers, score, max_score, level, emotion, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING seq`),
		a.ID, a.OwnerID, string(a.Mode), string(answers), a.Score, a.MaxScore,
		string(a.Level), string(a.Emotion), formatTime(a.CreatedAt)).Scan(&seq)
	if isUniqueViolation(err) {
		return api.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	a.Seq = seq
	return nil
}

func (s *SQLStore) ListAssessmentsByOwner(ctx context.Context, owner string) ([]*wellness.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT seq, id, owner_id, mode, answers, score, max_score, level, emotion, created_at
		 FROM assessments WHERE owner_id = ? ORDER BY created_at, seq`), owner)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListAssessmentsByOwner: rows.Close", cerr)
		}
	}()
	out := []*wellness.Assessment{}
	for rows.Next() {
		var (
			a                      wellness.Assessment
			mode, level, emotion   string
			answers, createdAtText string
		)
		if err := rows.Scan(&a.Seq, &a.ID, &a.OwnerID, &mode, &answers, &a.Score, &a.MaxScore, &level, &emotion, &createdAtText); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		a.Mode = wellness.Mode(mode)
		a.Level = wellness.Level(level)
		a.Emotion = wellness.Emotion(emotion)
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of %s: %w", a.ID, err)
		}
		if a.CreatedAt, err = parseTime(createdAtText); err != nil {
			return nil, fmt.Errorf("assessment %s created_at: %w", a.ID, err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	wellness.SortChronological(out)
	return out, nil
}

func (s *SQLStore) DeleteAssessment(ctx context.Context, owner, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM assessments WHERE owner_id = ? AND id = ?`), owner, id)
	if err != nil {
		return false, fmt.Errorf("delete assessment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete assessment rows: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) DeleteAssessmentsByOwner(ctx context.Context, owner string) (int, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM assessments WHERE owner_id = ?`), owner)
	if err != nil {
		return 0, fmt.Errorf("clear assessments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear assessments rows: %w", err)
	}
	return int(n), nil
}

// Audit

func (s *SQLStore) AddAudit(e api.AuditEntry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := s.db.ExecContext(context.Background(), s.rebind(
		`INSERT INTO audit_log (at, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`),
		formatTime(e.Time), e.Actor, e.Action, e.Target, e.Note)
	s.logErr("AddAudit", err)
}

func (s *SQLStore) ListAudit() []api.AuditEntry {
	out := []api.AuditEntry{}
	rows, err := s.db.QueryContext(context.Background(), `SELECT at, actor, action, target, note FROM audit_log ORDER BY id`)
	if err != nil {
		s.logErr("ListAudit: query", err)
		return out
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListAudit: rows.Close", cerr)
		}
	}()
	for rows.Next() {
		var (
			e  api.AuditEntry
			at string
		)
		if err := rows.Scan(&at, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			s.logErr("ListAudit: scan", err)
			return out
		}
		t, err := parseTime(at)
		s.logErr("ListAudit: parse time", err)
		e.Time = t
		out = append(out, e)
	}
	s.logErr("ListAudit: rows.Err", rows.Err())
	return out
}
