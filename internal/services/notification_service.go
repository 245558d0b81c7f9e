package services

import (
	"context"

	"neuroclinic-server/internal/models"
)

type NotificationService struct {
	base
}

func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool) ([]models.Notification, error) {
	return s.store.Notifications.ListByUser(ctx, actor.UserID, unreadOnly)
}

// MarkRead only touches the caller's own notifications.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	return s.store.Notifications.MarkRead(ctx, id, actor.UserID, s.now())
}
