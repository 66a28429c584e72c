package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"college-reclaim/database"
	"college-reclaim/models"
)

// NotificationService manages in-app notifications.
type NotificationService struct {
	db *sql.DB
}

// NewNotificationService creates a new notification service.
func NewNotificationService(db *sql.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Create inserts a notification row for a user.
func (s *NotificationService) Create(ctx context.Context, userID, title, message, notifType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notifications (id, user_id, title, message, type) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), userID, title, message, notifType)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	query := "SELECT id, user_id, title, message, type, is_read, created_at FROM notifications WHERE user_id = ?"
	if unreadOnly {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT 200"

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?",
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE", userID)
	if err != nil {
		return fmt.Errorf("failed to update notifications: %w", err)
	}
	return nil
}
