// Package regdraft persists the multi-step registration form so a student
// can resume where they left off. Cosmetic: failed writes degrade silently.
package regdraft

import (
	"time"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/storage"
)

const Key = "jrmsu_registration_draft"

type Service struct {
	backend storage.Backend
	lg      *zap.SugaredLogger
}

func New(b storage.Backend, lg *zap.SugaredLogger) *Service {
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Service{backend: b, lg: lg}
}

func (s *Service) Load() (models.RegistrationDraft, bool) {
	return storage.GetJSON[models.RegistrationDraft](s.backend, Key)
}

func (s *Service) Save(d models.RegistrationDraft) {
	d.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := storage.PutJSON(s.backend, Key, d); err != nil {
		s.lg.Warnw("registration draft write dropped", "error", err)
	}
}

func (s *Service) Clear() {
	if err := s.backend.Delete(Key); err != nil {
		s.lg.Warnw("registration draft clear dropped", "error", err)
	}
}
