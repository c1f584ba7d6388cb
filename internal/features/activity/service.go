package activity

import (
	"context"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/store"
	"go-crm-assistant/pkg/utils"
)

// Appender accepts activity entries without blocking the caller
type Appender interface {
	Append(entry models.ActivityLog) bool
}

type ActivityService interface {
	Record(ctx context.Context, action, entityType, entityName string, details map[string]any)
	Recent(ctx context.Context, limit int) ([]models.Row, error)
}

type ActivityServiceImpl struct {
	sink  Appender
	store store.Store
	clock func() time.Time
}

func NewActivityService(sink Appender, s store.Store) ActivityService {
	return &ActivityServiceImpl{sink: sink, store: s, clock: time.Now}
}

// Record queues an activity_logs entry stamped with the current user, or
// "system" when ctx carries no identity.
func (s *ActivityServiceImpl) Record(ctx context.Context, action, entityType, entityName string, details map[string]any) {
	s.sink.Append(models.ActivityLog{
		Action:     action,
		EntityType: entityType,
		EntityName: entityName,
		UserEmail:  CurrentUserEmail(ctx),
		Details:    details,
		CreatedAt:  s.clock(),
	})
}

func (s *ActivityServiceImpl) Recent(ctx context.Context, limit int) ([]models.Row, error) {
	if limit < 1 {
		limit = 50
	}
	return s.store.Select(ctx, models.CollectionActivityLogs, store.Query{
		OrderBy:    "created_at",
		Descending: true,
		Limit:      limit,
	})
}

// CurrentUserEmail returns the authenticated user's email, falling back to
// the user id, then to the system actor.
func CurrentUserEmail(ctx context.Context) string {
	claims := utils.CurrentUser(ctx)
	if claims == nil {
		return models.SystemActor
	}
	if claims.Email != "" {
		return claims.Email
	}
	if claims.UserID != "" {
		return claims.UserID
	}
	return models.SystemActor
}
