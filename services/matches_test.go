package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"college-reclaim/database"
	"college-reclaim/models"
)

func newMatchService(t *testing.T) (*MatchService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	notifications := NewNotificationService(db)
	items := NewItemService(db, notifications, nil)
	return NewMatchService(db, items, notifications), mock, func() { db.Close() }
}

var (
	lostItemColumns = []string{"id", "user_id", "title", "description", "category",
		"location", "date_lost", "status", "created_at", "updated_at"}
	foundItemColumns = []string{"id", "user_id", "title", "description", "category",
		"location", "date_found", "status", "handed_to_admin", "created_at", "updated_at"}
)

func lostItemRow(id, userID, status string) *sqlmock.Rows {
	return sqlmock.NewRows(lostItemColumns).
		AddRow(id, userID, "iPhone 13", "", models.CategoryElectronics,
			"Cafeteria", time.Now(), status, time.Now(), time.Now())
}

func foundItemRow(id, userID string) *sqlmock.Rows {
	return sqlmock.NewRows(foundItemColumns).
		AddRow(id, userID, "Black iPhone", "", models.CategoryElectronics,
			"Library", time.Now(), models.FoundStatusFound, false, time.Now(), time.Now())
}

func TestCreateManual_Duplicate(t *testing.T) {
	svc, mock, done := newMatchService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM lost_items WHERE id = ?").
		WithArgs("lost-1").WillReturnRows(lostItemRow("lost-1", "u1", models.LostStatusLost))
	mock.ExpectQuery("SELECT (.+) FROM found_items WHERE id = ?").
		WithArgs("found-1").WillReturnRows(foundItemRow("found-1", "u2"))

	// Unlike the automatic path, the manual claim checks the pair first
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM matches").
		WithArgs("lost-1", "found-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.CreateManual(context.Background(), "u1", models.CreateMatchRequest{
		LostItemID:  "lost-1",
		FoundItemID: "found-1",
	})
	if !errors.Is(err, database.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateManual_SimilarityOne(t *testing.T) {
	svc, mock, done := newMatchService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM lost_items WHERE id = ?").
		WithArgs("lost-1").WillReturnRows(lostItemRow("lost-1", "u1", models.LostStatusLost))
	mock.ExpectQuery("SELECT (.+) FROM found_items WHERE id = ?").
		WithArgs("found-1").WillReturnRows(foundItemRow("found-1", "u2"))
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM matches").
		WithArgs("lost-1", "found-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec("INSERT INTO matches").
		WithArgs(sqlmock.AnyArg(), "lost-1", "found-1", "u1",
			models.SimilarityManual, models.MatchStatusPending).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "u2", sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationMatchFound).
		WillReturnResult(sqlmock.NewResult(1, 1))

	match, err := svc.CreateManual(context.Background(), "u1", models.CreateMatchRequest{
		LostItemID:  "lost-1",
		FoundItemID: "found-1",
	})
	if err != nil {
		t.Fatalf("CreateManual: %v", err)
	}
	if match.Similarity != models.SimilarityManual {
		t.Errorf("expected similarity 1.0, got %v", match.Similarity)
	}
	if match.Status != models.MatchStatusPending {
		t.Errorf("expected PENDING, got %s", match.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateManual_NotOwner(t *testing.T) {
	svc, mock, done := newMatchService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM lost_items WHERE id = ?").
		WithArgs("lost-1").WillReturnRows(lostItemRow("lost-1", "u1", models.LostStatusLost))

	_, err := svc.CreateManual(context.Background(), "u9", models.CreateMatchRequest{
		LostItemID:  "lost-1",
		FoundItemID: "found-1",
	})
	if !errors.Is(err, database.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func matchRow(ownerID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"lost_item_id", "found_item_id", "user_id",
		"similarity", "status", "created_at"}).
		AddRow("lost-1", "found-1", ownerID, models.SimilarityAuto, status, time.Now())
}

func TestUpdateStatus_ConfirmResolvesItems(t *testing.T) {
	svc, mock, done := newMatchService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM matches WHERE id = ?").
		WithArgs("match-1").WillReturnRows(matchRow("u1", models.MatchStatusPending))

	mock.ExpectExec("UPDATE matches SET status = ?").
		WithArgs(models.MatchStatusConfirmed, "match-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE lost_items SET status = ?").
		WithArgs(models.LostStatusResolved, "lost-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE found_items SET status = ?").
		WithArgs(models.FoundStatusResolved, "found-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("SELECT (.+) FROM found_items WHERE id = ?").
		WithArgs("found-1").WillReturnRows(foundItemRow("found-1", "u2"))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "u2", sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationMatchConfirmed).
		WillReturnResult(sqlmock.NewResult(1, 1))

	match, err := svc.UpdateStatus(context.Background(), "u1", "match-1", models.MatchStatusConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if match.Status != models.MatchStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", match.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatus_RejectLeavesItems(t *testing.T) {
	svc, mock, done := newMatchService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM matches WHERE id = ?").
		WithArgs("match-1").WillReturnRows(matchRow("u1", models.MatchStatusPending))
	mock.ExpectExec("UPDATE matches SET status = ?").
		WithArgs(models.MatchStatusRejected, "match-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	match, err := svc.UpdateStatus(context.Background(), "u1", "match-1", models.MatchStatusRejected)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if match.Status != models.MatchStatusRejected {
		t.Errorf("expected REJECTED, got %s", match.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatus_OnlyFromPending(t *testing.T) {
	svc, mock, done := newMatchService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM matches WHERE id = ?").
		WithArgs("match-1").WillReturnRows(matchRow("u1", models.MatchStatusConfirmed))

	_, err := svc.UpdateStatus(context.Background(), "u1", "match-1", models.MatchStatusRejected)
	if !errors.Is(err, database.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for non-pending match, got %v", err)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, mock, done := newMatchService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM matches WHERE id = ?").
		WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := svc.UpdateStatus(context.Background(), "u1", "missing", models.MatchStatusConfirmed)
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
