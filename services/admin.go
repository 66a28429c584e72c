package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apex/log"

	"college-reclaim/database"
	"college-reclaim/email"
	"college-reclaim/models"
)

// AdminService carries admin-only operations, currently the broadcast.
type AdminService struct {
	db            *sql.DB
	notifications *NotificationService
	mailer        Mailer
}

// NewAdminService creates a new admin service.
func NewAdminService(db *sql.DB, notifications *NotificationService, mailer Mailer) *AdminService {
	return &AdminService{
		db:            db,
		notifications: notifications,
		mailer:        mailer,
	}
}

// Notify sends an announcement to one user or to everyone: an in-app
// notification row per recipient plus a best-effort email. Per-recipient
// email failures are collected and reported, never retried, and one failure
// does not abort the batch.
func (s *AdminService) Notify(ctx context.Context, req models.AdminNotifyRequest) (*models.AdminNotifyResponse, error) {
	query := "SELECT id, email FROM users"
	args := []interface{}{}
	if req.UserID != "" {
		query += " WHERE id = ?"
		args = append(args, req.UserID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	type recipient struct {
		id    string
		email string
	}
	recipients := []recipient{}
	for rows.Next() {
		var r recipient
		if err := rows.Scan(&r.id, &r.email); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipients: %w", err)
	}
	if req.UserID != "" && len(recipients) == 0 {
		return nil, database.ErrNotFound
	}

	resp := &models.AdminNotifyResponse{}
	msg := email.Broadcast(req.Title, req.Message)

	for _, r := range recipients {
		if err := s.notifications.Create(ctx, r.id, req.Title, req.Message, models.NotificationInfo); err != nil {
			return resp, err
		}
		resp.Notified++

		if err := s.mailer.Send(ctx, r.email, msg.Subject, msg.PlainText, msg.HTML); err != nil {
			log.WithError(err).Warnf("Broadcast email to %s failed", r.email)
			resp.FailedEmails = append(resp.FailedEmails, r.email)
			continue
		}
		resp.EmailsSent++
	}

	log.Infof("Broadcast %q: %d notified, %d emails sent, %d failed",
		req.Title, resp.Notified, resp.EmailsSent, len(resp.FailedEmails))
	return resp, nil
}
