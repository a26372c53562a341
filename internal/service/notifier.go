package service

import (
	"context"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/logger"
	"gearloop-backend/internal/push"
	"gearloop-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	pusher   push.Sender // nil when push is disabled
}

func NewNotificationService(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, pusher push.Sender) NotificationService {
	return &notificationService{
		noteRepo: noteRepo,
		userRepo: userRepo,
		pusher:   pusher,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID int32, notifType, title, message string, attributes map[string]string) {
	note := &domain.Notification{
		UserID:     userID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		Attributes: attributes,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to store notification", "user_id", userID, "type", notifType, "error", err)
	}

	if s.pusher == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.FCMToken == "" {
		return
	}
	if err := s.pusher.Send(ctx, user.FCMToken, title, message, attributes); err != nil {
		logger.Warn("Failed to push notification", "user_id", userID, "type", notifType, "error", err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.noteRepo.List(ctx, userID, pageSize, (page-1)*pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}
