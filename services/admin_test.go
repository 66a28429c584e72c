package services

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"college-reclaim/database"
	"college-reclaim/models"
)

func newAdminService(t *testing.T, mailer Mailer) (*AdminService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return NewAdminService(db, NewNotificationService(db), mailer), mock, func() { db.Close() }
}

func TestAdminNotify_Broadcast(t *testing.T) {
	mailer := &recordingMailer{}
	svc, mock, done := newAdminService(t, mailer)
	defer done()

	mock.ExpectQuery("SELECT id, email FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow("u1", "a@campus.edu").
			AddRow("u2", "b@campus.edu").
			AddRow("u3", "c@campus.edu"))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO notifications").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	resp, err := svc.Notify(context.Background(), models.AdminNotifyRequest{
		Title:   "Library closed",
		Message: "The library closes early on Friday.",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if resp.Notified != 3 || resp.EmailsSent != 3 || len(resp.FailedEmails) != 0 {
		t.Errorf("expected 3/3/0, got %d/%d/%d", resp.Notified, resp.EmailsSent, len(resp.FailedEmails))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAdminNotify_SingleRecipientNotFound(t *testing.T) {
	svc, mock, done := newAdminService(t, &recordingMailer{})
	defer done()

	mock.ExpectQuery("SELECT id, email FROM users WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := svc.Notify(context.Background(), models.AdminNotifyRequest{
		UserID:  "missing",
		Title:   "Hello",
		Message: "Hi",
	})
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminNotify_EmailFailuresDoNotAbort(t *testing.T) {
	mailer := &recordingMailer{fail: true}
	svc, mock, done := newAdminService(t, mailer)
	defer done()

	mock.ExpectQuery("SELECT id, email FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow("u1", "a@campus.edu").
			AddRow("u2", "b@campus.edu"))
	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO notifications").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	resp, err := svc.Notify(context.Background(), models.AdminNotifyRequest{
		Title:   "Hello",
		Message: "Hi",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if resp.Notified != 2 {
		t.Errorf("every recipient still gets the in-app notification, got %d", resp.Notified)
	}
	if resp.EmailsSent != 0 || len(resp.FailedEmails) != 2 {
		t.Errorf("expected 0 sent and 2 failed, got %d/%d", resp.EmailsSent, len(resp.FailedEmails))
	}
}
