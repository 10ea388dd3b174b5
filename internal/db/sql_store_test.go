package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soaringjerry/MindBalance/internal/api"
	"github.com/soaringjerry/MindBalance/internal/wellness"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "mindbalance.db")
	store, err := Open(context.Background(), DialectSQLite, dsn, "")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteUsers(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	created := time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)
	u := &api.User{ID: "u1", Name: "Ada", Email: "Ada@Example.com", PassHash: []byte("hash"), CreatedAt: created}
	if err := store.AddUser(ctx, u); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if err := store.AddUser(ctx, &api.User{ID: "u2", Name: "Other", Email: "ada@example.com", PassHash: []byte("x"), CreatedAt: created}); !errors.Is(err, api.ErrDuplicate) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	got, err := store.FindUserByEmail(ctx, "ADA@example.com")
	if err != nil || got == nil {
		t.Fatalf("FindUserByEmail: %v %v", got, err)
	}
	if got.ID != "u1" || string(got.PassHash) != "hash" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user %+v", got)
	}
	if missing, err := store.GetUser(ctx, "nope"); err != nil || missing != nil {
		t.Fatalf("missing user: %v %v", missing, err)
	}

	ok, err := store.UpdateProfile(ctx, "u1", "Ada L.", "Nurse")
	if err != nil || !ok {
		t.Fatalf("UpdateProfile: %v %v", ok, err)
	}
	got, _ = store.GetUser(ctx, "u1")
	if got.Name != "Ada L." || got.Profession != "Nurse" {
		t.Fatalf("profile not updated: %+v", got)
	}
	if ok, _ := store.UpdateProfile(ctx, "nope", "x", ""); ok {
		t.Fatalf("updating a missing user reported success")
	}
}

func TestSQLiteAssessments(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	first := &wellness.Assessment{ID: "a1", OwnerID: "u1", Mode: wellness.ModeEmotion, Answers: wellness.Answers{"stress": 6, "mood": 2},
		Score: 6, MaxScore: 10, Emotion: wellness.EmotionTired, CreatedAt: at}
	second := &wellness.Assessment{ID: "a2", OwnerID: "u1", Mode: wellness.ModeBanded, Answers: wellness.Answers{"nervous": 3},
		Score: 21, MaxScore: 21, Level: wellness.LevelHigh, CreatedAt: at}
	for _, a := range []*wellness.Assessment{first, second} {
		if err := store.SaveAssessment(ctx, a); err != nil {
			t.Fatalf("SaveAssessment: %v", err)
		}
	}
	if first.Seq == 0 || second.Seq <= first.Seq {
		t.Fatalf("seq not assigned in insertion order: %d %d", first.Seq, second.Seq)
	}
	if err := store.SaveAssessment(ctx, first.Clone()); !errors.Is(err, api.ErrDuplicate) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	same := first.Clone()
	same.OwnerID = "u2"
	if err := store.SaveAssessment(ctx, same); err != nil {
		t.Fatalf("same id for another owner: %v", err)
	}

	list, err := store.ListAssessmentsByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAssessmentsByOwner: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a1" || list[1].ID != "a2" {
		t.Fatalf("ties must keep insertion order: %+v", list)
	}
	if list[0].Answers["mood"] != 2 || list[0].Emotion != wellness.EmotionTired || !list[0].CreatedAt.Equal(at) {
		t.Fatalf("record did not round-trip: %+v", list[0])
	}
	if list[1].Level != wellness.LevelHigh || list[1].Emotion != "" {
		t.Fatalf("banded record did not round-trip: %+v", list[1])
	}

	if ok, err := store.DeleteAssessment(ctx, "u2", "a2"); err != nil || ok {
		t.Fatalf("cross-owner delete: %v %v", ok, err)
	}
	if ok, err := store.DeleteAssessment(ctx, "u1", "a2"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	n, err := store.DeleteAssessmentsByOwner(ctx, "u1")
	if err != nil || n != 1 {
		t.Fatalf("DeleteAssessmentsByOwner = %d (%v)", n, err)
	}
	if rest, _ := store.ListAssessmentsByOwner(ctx, "u2"); len(rest) != 1 {
		t.Fatalf("other owner's records affected")
	}
}

func TestSQLiteAudit(t *testing.T) {
	store := openTestStore(t)
	store.AddAudit(api.AuditEntry{Time: time.Unix(1714550400, 0), Actor: "u1", Action: "import_checkins", Target: "u1", Note: "imported=3"})
	store.AddAudit(api.AuditEntry{Actor: "u1", Action: "clear_assessments", Target: "u1"})
	got := store.ListAudit()
	if len(got) != 2 || got[0].Action != "import_checkins" || got[0].Note != "imported=3" || got[1].Time.IsZero() {
		t.Fatalf("unexpected audit %+v", got)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	store := openTestStore(t)
	if err := RunMigrations(store.db, DialectSQLite, ""); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
	var n int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE name = '0001_init.sql'").Scan(&n); err != nil || n != 1 {
		t.Fatalf("init migration recorded %d times (%v)", n, err)
	}
	if err := RunMigrations(store.db, "oracle", ""); err == nil {
		t.Fatalf("expected unknown dialect error")
	}
}

func TestMigrationsFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sqlite"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sqlite", "0001_extra.sql"), []byte("CREATE TABLE IF NOT EXISTS extra (id TEXT)"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err := loadMigrations(DialectSQLite, dir)
	if err != nil || len(files) != 1 || files[0].name != "0001_extra.sql" {
		t.Fatalf("override dir not used: %+v (%v)", files, err)
	}
	files, err = loadMigrations(DialectPostgres, dir)
	if err != nil || len(files) == 0 || files[0].name != "0001_init.sql" {
		t.Fatalf("missing dialect dir should fall back to embedded: %+v (%v)", files, err)
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	store := openTestStore(t)
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sqlite"), 0o755); err != nil {
		t.Fatal(err)
	}
	// ALTER TABLE ADD COLUMN fails when executed twice
	stmt := "ALTER TABLE users ADD COLUMN timezone TEXT NOT NULL DEFAULT 'UTC'"
	if err := os.WriteFile(filepath.Join(dir, "sqlite", "0002_timezone.sql"), []byte(stmt), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := RunMigrations(store.db, DialectSQLite, dir); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	var n int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil || n != 2 {
		t.Fatalf("expected 2 recorded migrations, got %d (%v)", n, err)
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	if got := pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"); got != "SELECT a FROM t WHERE x = $1 AND y = $2" {
		t.Fatalf("postgres rebind = %q", got)
	}
	lite := &SQLStore{dialect: DialectSQLite}
	if got := lite.rebind("x = ?"); got != "x = ?" {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
}

// TestPostgresStore runs against a live database when MINDBALANCE_TEST_DATABASE_URL is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("MINDBALANCE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MINDBALANCE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, DialectPostgres, dsn, "")
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer store.Close()
	owner := "pg-" + time.Now().Format("150405.000000000")
	a := &wellness.Assessment{ID: "a1", OwnerID: owner, Mode: wellness.ModeEmotion, Answers: wellness.Answers{"stress": 4, "mood": 0},
		Score: 4, MaxScore: 10, Emotion: wellness.EmotionHappy, CreatedAt: time.Now()}
	if err := store.SaveAssessment(ctx, a); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if err := store.SaveAssessment(ctx, a.Clone()); !errors.Is(err, api.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	list, err := store.ListAssessmentsByOwner(ctx, owner)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %v", list, err)
	}
	if n, err := store.DeleteAssessmentsByOwner(ctx, owner); err != nil || n != 1 {
		t.Fatalf("cleanup: %d %v", n, err)
	}
}
