package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apex/log"
	"github.com/google/uuid"

	"college-reclaim/database"
	"college-reclaim/email"
	"college-reclaim/models"
)

// CoordinatorService manages coordinator access requests and their review.
type CoordinatorService struct {
	db            *sql.DB
	auth          *database.AuthService
	notifications *NotificationService
	mailer        Mailer
	adminEmail    string
}

// NewCoordinatorService creates a new coordinator request service.
func NewCoordinatorService(db *sql.DB, auth *database.AuthService, notifications *NotificationService, mailer Mailer, adminEmail string) *CoordinatorService {
	return &CoordinatorService{
		db:            db,
		auth:          auth,
		notifications: notifications,
		mailer:        mailer,
		adminEmail:    adminEmail,
	}
}

// Create submits a coordinator access request. One pending request per user.
// The confirmation and admin-alert emails are best effort; the request row
// stands even if both fail.
func (s *CoordinatorService) Create(ctx context.Context, userID, reason string) (*models.CoordinatorRequest, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM coordinator_requests WHERE user_id = ? AND status = ?)",
		userID, models.RequestStatusPending).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}
	if exists {
		return nil, database.ErrDuplicate
	}

	user, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	request := &models.CoordinatorRequest{
		ID:     uuid.NewString(),
		UserID: userID,
		Reason: reason,
		Status: models.RequestStatusPending,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO coordinator_requests (id, user_id, reason, status) VALUES (?, ?, ?, ?)",
		request.ID, request.UserID, request.Reason, request.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to insert coordinator request: %w", err)
	}

	confirmation := email.CoordinatorReceived(user.Name)
	if err := s.mailer.Send(ctx, user.Email, confirmation.Subject, confirmation.PlainText, confirmation.HTML); err != nil {
		log.WithError(err).Warnf("Failed to send coordinator confirmation to %s", user.Email)
	}

	if s.adminEmail != "" {
		alert := email.CoordinatorAdminAlert(user.Name, user.Email, reason)
		if err := s.mailer.Send(ctx, s.adminEmail, alert.Subject, alert.PlainText, alert.HTML); err != nil {
			log.WithError(err).Warn("Failed to send coordinator admin alert")
		}
	}

	return request, nil
}

// List returns coordinator requests, optionally filtered by status.
func (s *CoordinatorService) List(ctx context.Context, status string) ([]models.CoordinatorRequest, error) {
	query := "SELECT id, user_id, reason, status, COALESCE(reviewed_by, ''), created_at, updated_at FROM coordinator_requests"
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query coordinator requests: %w", err)
	}
	defer rows.Close()

	requests := []models.CoordinatorRequest{}
	for rows.Next() {
		var r models.CoordinatorRequest
		if err := rows.Scan(&r.ID, &r.UserID, &r.Reason, &r.Status, &r.ReviewedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan coordinator request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// Review approves or rejects a pending request. Approval promotes the user,
// issues a SETUP code and emails it. The role update, code insert and status
// update are separate writes with no compensating transaction; a failure
// partway through leaves the earlier writes in place.
func (s *CoordinatorService) Review(ctx context.Context, adminID, requestID, action string) (*models.CoordinatorRequest, error) {
	request := &models.CoordinatorRequest{ID: requestID}
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, reason, status, created_at, updated_at FROM coordinator_requests WHERE id = ?",
		requestID).Scan(&request.UserID, &request.Reason, &request.Status, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query coordinator request: %w", err)
	}
	if request.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("%w: request already %s", database.ErrDuplicate, request.Status)
	}

	user, err := s.auth.GetUser(ctx, request.UserID)
	if err != nil {
		return nil, err
	}

	if action == "approve" {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			models.RoleCoordinator, request.UserID); err != nil {
			return nil, fmt.Errorf("failed to promote user: %w", err)
		}

		code, err := s.auth.IssueOTP(ctx, request.UserID, models.OTPPurposeSetup)
		if err != nil {
			return nil, err
		}

		if _, err := s.db.ExecContext(ctx,
			"UPDATE coordinator_requests SET status = ?, reviewed_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			models.RequestStatusApproved, adminID, requestID); err != nil {
			return nil, fmt.Errorf("failed to update request: %w", err)
		}
		request.Status = models.RequestStatusApproved
		request.ReviewedBy = adminID

		decision := email.CoordinatorDecision(user.Name, true)
		if err := s.mailer.Send(ctx, user.Email, decision.Subject, decision.PlainText, decision.HTML); err != nil {
			log.WithError(err).Warnf("Failed to send approval email to %s", user.Email)
		}
		setup := email.PasswordOTP(code, true)
		if err := s.mailer.Send(ctx, user.Email, setup.Subject, setup.PlainText, setup.HTML); err != nil {
			log.WithError(err).Warnf("Failed to send setup code to %s", user.Email)
		}
	} else {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE coordinator_requests SET status = ?, reviewed_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			models.RequestStatusRejected, adminID, requestID); err != nil {
			return nil, fmt.Errorf("failed to update request: %w", err)
		}
		request.Status = models.RequestStatusRejected
		request.ReviewedBy = adminID

		decision := email.CoordinatorDecision(user.Name, false)
		if err := s.mailer.Send(ctx, user.Email, decision.Subject, decision.PlainText, decision.HTML); err != nil {
			log.WithError(err).Warnf("Failed to send rejection email to %s", user.Email)
		}
	}

	if err := s.notifications.Create(ctx, request.UserID,
		fmt.Sprintf("Coordinator request %s", request.Status),
		fmt.Sprintf("An administrator %s your coordinator access request.", map[string]string{
			models.RequestStatusApproved: "approved",
			models.RequestStatusRejected: "rejected",
		}[request.Status]),
		models.NotificationCoordinator); err != nil {
		return nil, err
	}

	return request, nil
}
