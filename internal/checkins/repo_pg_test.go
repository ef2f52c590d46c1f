package checkins

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoUpsertConflictsOnUserDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(`INSERT INTO daily_checkins .* ON CONFLICT \(user_id, date\) DO UPDATE`).
		WithArgs("id-new", "user-1", "2026-05-04", 3, 1, 4, []byte(`["nausea"]`), []byte(`[]`), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("id-old", created, updated))

	got, err := repo.Upsert(context.Background(), CheckIn{
		ID:          "id-new",
		UserID:      "user-1",
		Date:        "2026-05-04",
		Energy:      3,
		Pain:        1,
		Confidence:  4,
		SideEffects: []string{"nausea"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got.ID != "id-old" {
		t.Fatalf("expected existing id to be kept, got %s", got.ID)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(updated) {
		t.Fatalf("expected updatedAt %s, got %v", updated, got.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetForDateOrdersAuthoritativeFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)
	columns := []string{"id", "user_id", "date", "energy", "pain", "confidence", "side_effects", "red_flags", "notes", "created_at", "updated_at"}

	mock.ExpectQuery(`FROM daily_checkins\s+WHERE user_id = \$1 AND date = \$2\s+ORDER BY updated_at DESC NULLS LAST, created_at DESC`).
		WithArgs("user-1", "2026-05-04").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"id-1", "user-1", "2026-05-04", 2, 0, 3, []byte(`["fatigue"]`), []byte(`["CHEST_PAIN"]`), "tired", created, nil,
		))

	got, err := repo.GetForDate(context.Background(), "user-1", "2026-05-04")
	if err != nil {
		t.Fatalf("GetForDate: %v", err)
	}
	if got.RedFlags[0] != "CHEST_PAIN" || got.SideEffects[0] != "fatigue" {
		t.Fatalf("unexpected tags: %+v", got)
	}
	if got.Notes == nil || *got.Notes != "tired" {
		t.Fatalf("unexpected notes: %v", got.Notes)
	}
	if got.UpdatedAt != nil {
		t.Fatalf("expected nil updatedAt")
	}

	mock.ExpectQuery(`FROM daily_checkins`).
		WithArgs("user-2", "2026-05-04").
		WillReturnRows(sqlmock.NewRows(columns))
	if _, err := repo.GetForDate(context.Background(), "user-2", "2026-05-04"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
