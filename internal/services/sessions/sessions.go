// Package sessions registers issued login tokens by JWT ID so logout can
// revoke them ahead of expiry.
package sessions

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/storage"
)

const Key = "jrmsu_sessions"

type Service struct {
	col *storage.Collection[models.Session]
}

func New(b storage.Backend, lg *zap.SugaredLogger) *Service {
	return &Service{
		col: storage.NewCollection(b, Key, storage.CollectionConfig[models.Session]{
			KeyOf:    func(s models.Session) string { return s.JTI },
			Critical: true,
			Logger:   lg,
		}),
	}
}

// Register records a newly issued token.
func (s *Service) Register(jti, userID string, expiresAt time.Time) error {
	return s.col.Create(models.Session{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
}

// Active reports whether the session exists, is unrevoked, and is unexpired.
func (s *Service) Active(jti string) bool {
	sess, ok := s.col.Get(jti)
	if !ok {
		return false
	}
	return sess.RevokedAt == nil && time.Now().Before(sess.ExpiresAt)
}

// Revoke invalidates the session. Revoking an unknown JTI is a no-op.
func (s *Service) Revoke(jti string) error {
	err := s.col.Update(jti, func(sess *models.Session) {
		if sess.RevokedAt == nil {
			now := time.Now()
			sess.RevokedAt = &now
		}
	})
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}
