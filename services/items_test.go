package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"college-reclaim/models"
)

var (
	itemsDB   *sql.DB
	itemsMock sqlmock.Sqlmock
	itemSvc   *ItemService
)

func setUp() {
	itemsDB, itemsMock, _ = sqlmock.New()
	itemSvc = NewItemService(itemsDB, NewNotificationService(itemsDB), nil)
}

func tearDown() {
	itemsDB.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var candidateColumns = []string{"id", "user_id", "email", "title"}

func expectFoundItemInsert() {
	itemsMock.ExpectExec("INSERT INTO found_items").
		WithArgs(sqlmock.AnyArg(), "u2", "Black iPhone", "", models.CategoryElectronics,
			"Library", sqlmock.AnyArg(), models.FoundStatusFound, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func foundItemRequest() models.CreateFoundItemRequest {
	return models.CreateFoundItemRequest{
		Title:     "Black iPhone",
		Category:  models.CategoryElectronics,
		Location:  "Library",
		DateFound: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateFoundItem_SingleCandidate(t *testing.T) {
	it(func() {
		expectFoundItemInsert()

		// L1 belongs to u1, same category, still LOST
		itemsMock.ExpectQuery("SELECT li.id, li.user_id, u.email, li.title").
			WithArgs(models.CategoryElectronics, models.LostStatusLost, "u2").
			WillReturnRows(sqlmock.NewRows(candidateColumns).
				AddRow("lost-1", "u1", "u1@campus.edu", "iPhone 13"))

		// One match row at the fixed automatic similarity, explicitly PENDING
		itemsMock.ExpectExec("INSERT INTO matches").
			WithArgs(sqlmock.AnyArg(), "lost-1", sqlmock.AnyArg(), "u1",
				models.SimilarityAuto, models.MatchStatusPending).
			WillReturnResult(sqlmock.NewResult(1, 1))

		// Owner notified of the match, reporter gets an INFO notification
		itemsMock.ExpectExec("INSERT INTO notifications").
			WithArgs(sqlmock.AnyArg(), "u1", sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationMatchFound).
			WillReturnResult(sqlmock.NewResult(1, 1))
		itemsMock.ExpectExec("INSERT INTO notifications").
			WithArgs(sqlmock.AnyArg(), "u2", sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationInfo).
			WillReturnResult(sqlmock.NewResult(1, 1))

		item, candidates, err := itemSvc.CreateFoundItem(context.Background(), "u2", foundItemRequest())
		if err != nil {
			t.Fatalf("CreateFoundItem: %v", err)
		}
		if candidates != 1 {
			t.Errorf("expected 1 potential match, got %d", candidates)
		}
		if item.Status != models.FoundStatusFound {
			t.Errorf("expected status FOUND, got %s", item.Status)
		}
		if err := itemsMock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestCreateFoundItem_NoCandidates(t *testing.T) {
	it(func() {
		expectFoundItemInsert()

		// The category scan excludes the reporter's own items and RESOLVED
		// items at the SQL level, so an empty result set means zero matches.
		itemsMock.ExpectQuery("SELECT li.id, li.user_id, u.email, li.title").
			WithArgs(models.CategoryElectronics, models.LostStatusLost, "u2").
			WillReturnRows(sqlmock.NewRows(candidateColumns))

		itemsMock.ExpectExec("INSERT INTO notifications").
			WithArgs(sqlmock.AnyArg(), "u2", sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationInfo).
			WillReturnResult(sqlmock.NewResult(1, 1))

		_, candidates, err := itemSvc.CreateFoundItem(context.Background(), "u2", foundItemRequest())
		if err != nil {
			t.Fatalf("CreateFoundItem: %v", err)
		}
		if candidates != 0 {
			t.Errorf("expected 0 potential matches, got %d", candidates)
		}
		if err := itemsMock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestCreateFoundItem_FanOut(t *testing.T) {
	it(func() {
		expectFoundItemInsert()

		rows := sqlmock.NewRows(candidateColumns).
			AddRow("lost-1", "u1", "u1@campus.edu", "iPhone 13").
			AddRow("lost-2", "u3", "u3@campus.edu", "Dell charger").
			AddRow("lost-3", "u4", "u4@campus.edu", "AirPods")
		itemsMock.ExpectQuery("SELECT li.id, li.user_id, u.email, li.title").
			WithArgs(models.CategoryElectronics, models.LostStatusLost, "u2").
			WillReturnRows(rows)

		// N candidates produce exactly N match rows and N owner
		// notifications, sequentially, plus one INFO for the reporter.
		for _, owner := range []string{"u1", "u3", "u4"} {
			itemsMock.ExpectExec("INSERT INTO matches").
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), owner,
					models.SimilarityAuto, models.MatchStatusPending).
				WillReturnResult(sqlmock.NewResult(1, 1))
			itemsMock.ExpectExec("INSERT INTO notifications").
				WithArgs(sqlmock.AnyArg(), owner, sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationMatchFound).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		itemsMock.ExpectExec("INSERT INTO notifications").
			WithArgs(sqlmock.AnyArg(), "u2", sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationInfo).
			WillReturnResult(sqlmock.NewResult(1, 1))

		_, candidates, err := itemSvc.CreateFoundItem(context.Background(), "u2", foundItemRequest())
		if err != nil {
			t.Fatalf("CreateFoundItem: %v", err)
		}
		if candidates != 3 {
			t.Errorf("expected 3 potential matches, got %d", candidates)
		}
		if err := itemsMock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

// TestCreateFoundItem_NotIdempotent pins the long-standing behavior: a second
// structurally identical report produces a second full set of match and
// notification rows. There is no existence check in the automatic path.
func TestCreateFoundItem_NotIdempotent(t *testing.T) {
	it(func() {
		for i := 0; i < 2; i++ {
			expectFoundItemInsert()
			itemsMock.ExpectQuery("SELECT li.id, li.user_id, u.email, li.title").
				WithArgs(models.CategoryElectronics, models.LostStatusLost, "u2").
				WillReturnRows(sqlmock.NewRows(candidateColumns).
					AddRow("lost-1", "u1", "u1@campus.edu", "iPhone 13"))
			itemsMock.ExpectExec("INSERT INTO matches").
				WithArgs(sqlmock.AnyArg(), "lost-1", sqlmock.AnyArg(), "u1",
					models.SimilarityAuto, models.MatchStatusPending).
				WillReturnResult(sqlmock.NewResult(1, 1))
			itemsMock.ExpectExec("INSERT INTO notifications").
				WithArgs(sqlmock.AnyArg(), "u1", sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationMatchFound).
				WillReturnResult(sqlmock.NewResult(1, 1))
			itemsMock.ExpectExec("INSERT INTO notifications").
				WithArgs(sqlmock.AnyArg(), "u2", sqlmock.AnyArg(), sqlmock.AnyArg(), models.NotificationInfo).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}

		for i := 0; i < 2; i++ {
			_, candidates, err := itemSvc.CreateFoundItem(context.Background(), "u2", foundItemRequest())
			if err != nil {
				t.Fatalf("CreateFoundItem #%d: %v", i+1, err)
			}
			if candidates != 1 {
				t.Errorf("report #%d: expected 1 potential match, got %d", i+1, candidates)
			}
		}
		if err := itemsMock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

// TestCreateFoundItem_PartialFailure documents that a mid-loop insert error
// aborts the scan without rolling back earlier rows; the error propagates
// as-is for the handler's generic 500.
func TestCreateFoundItem_PartialFailure(t *testing.T) {
	it(func() {
		expectFoundItemInsert()
		itemsMock.ExpectQuery("SELECT li.id, li.user_id, u.email, li.title").
			WithArgs(models.CategoryElectronics, models.LostStatusLost, "u2").
			WillReturnRows(sqlmock.NewRows(candidateColumns).
				AddRow("lost-1", "u1", "u1@campus.edu", "iPhone 13").
				AddRow("lost-2", "u3", "u3@campus.edu", "Dell charger"))

		itemsMock.ExpectExec("INSERT INTO matches").
			WillReturnResult(sqlmock.NewResult(1, 1))
		itemsMock.ExpectExec("INSERT INTO notifications").
			WillReturnResult(sqlmock.NewResult(1, 1))
		itemsMock.ExpectExec("INSERT INTO matches").
			WillReturnError(sql.ErrConnDone)

		_, _, err := itemSvc.CreateFoundItem(context.Background(), "u2", foundItemRequest())
		if err == nil {
			t.Fatal("expected error from mid-loop failure")
		}
		if err := itemsMock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestCreateFoundItem_InvalidCategory(t *testing.T) {
	it(func() {
		req := foundItemRequest()
		req.Category = "SPACESHIP"
		_, _, err := itemSvc.CreateFoundItem(context.Background(), "u2", req)
		if err == nil {
			t.Fatal("expected error for unknown category")
		}
	})
}

func TestCreateLostItem_NoMatchScan(t *testing.T) {
	it(func() {
		// Reporting a lost item inserts exactly one row; no found-item scan
		// runs on this path.
		itemsMock.ExpectExec("INSERT INTO lost_items").
			WithArgs(sqlmock.AnyArg(), "u1", "iPhone 13", "black case", models.CategoryElectronics,
				"Cafeteria", sqlmock.AnyArg(), models.LostStatusLost).
			WillReturnResult(sqlmock.NewResult(1, 1))

		item, err := itemSvc.CreateLostItem(context.Background(), "u1", models.CreateLostItemRequest{
			Title:       "iPhone 13",
			Description: "black case",
			Category:    models.CategoryElectronics,
			Location:    "Cafeteria",
			DateLost:    time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("CreateLostItem: %v", err)
		}
		if item.Status != models.LostStatusLost {
			t.Errorf("expected status LOST, got %s", item.Status)
		}
		if err := itemsMock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestListLostItems_Filters(t *testing.T) {
	it(func() {
		itemsMock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM lost_items WHERE category = \\? AND status = \\?").
			WithArgs(models.CategoryBook, models.LostStatusLost).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		itemColumns := []string{"id", "user_id", "title", "description", "category",
			"location", "date_lost", "status", "created_at", "updated_at"}
		itemsMock.ExpectQuery("SELECT (.+) FROM lost_items WHERE category = \\? AND status = \\?").
			WithArgs(models.CategoryBook, models.LostStatusLost, 20, 0).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("lost-1", "u1", "Calculus textbook", "", models.CategoryBook,
					"Room 204", time.Now(), models.LostStatusLost, time.Now(), time.Now()))

		items, total, err := itemSvc.ListLostItems(context.Background(), models.ItemFilter{
			Category: models.CategoryBook,
			Status:   models.LostStatusLost,
		})
		if err != nil {
			t.Fatalf("ListLostItems: %v", err)
		}
		if total != 1 || len(items) != 1 {
			t.Errorf("expected 1 item, got total=%d len=%d", total, len(items))
		}
		if err := itemsMock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
