package markers

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

func TestPGRepoCreateAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO marker_results").
		WithArgs("m-1", "user-1", "SIT_TO_STAND", "HARD", nil, "", at, at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Create(context.Background(), Result{
		ID: "m-1", UserID: "user-1", Key: decision.MarkerSitToStand, Rating: "HARD", AssessedAt: at, CreatedAt: at,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	columns := []string{"id", "user_id", "marker_key", "rating", "comfortable_reps", "side", "assessed_at", "created_at"}
	mock.ExpectQuery(`FROM marker_results\s+WHERE user_id = \$1\s+ORDER BY assessed_at DESC, created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("m-2", "user-1", "SHOULDER_RAISE", "", int64(6), "RIGHT", at, at).
			AddRow("m-1", "user-1", "SIT_TO_STAND", "HARD", nil, "", at, at))

	got, err := repo.ListForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ComfortableReps == nil || *got[0].ComfortableReps != 6 {
		t.Fatalf("expected reps 6, got %v", got[0].ComfortableReps)
	}
	if got[1].ComfortableReps != nil {
		t.Fatalf("expected nil reps")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
