// Package users is the station's user directory, covering both admins and
// students, with password and QR-envelope login paths.
package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wiselib/internal/auth"
	"wiselib/internal/models"
	"wiselib/internal/qr"
	"wiselib/internal/storage"
)

const Key = "jrmsu_users_db"

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrInactive       = errors.New("account disabled")
	ErrQRInactive     = errors.New("qr login disabled for account")
	ErrEmailTaken     = errors.New("email already registered")
)

type Service struct {
	col *storage.Collection[models.User]
	lg  *zap.SugaredLogger
}

func New(b storage.Backend, lg *zap.SugaredLogger) *Service {
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Service{
		col: storage.NewCollection(b, Key, storage.CollectionConfig[models.User]{
			KeyOf:    func(u models.User) string { return u.ID },
			Critical: true,
			Logger:   lg,
		}),
		lg: lg,
	}
}

func (s *Service) List() []models.User { return s.col.List() }

func (s *Service) ByID(id string) (models.User, bool) { return s.col.Get(id) }

func (s *Service) ByEmail(email string) (models.User, bool) {
	email = strings.ToLower(email)
	for _, u := range s.col.List() {
		if strings.ToLower(u.Email) == email {
			return u, true
		}
	}
	return models.User{}, false
}

// Create registers a user, hashing the plaintext password and deriving the
// system tag from the user type.
func (s *Service) Create(u models.User, password string) error {
	if _, taken := s.ByEmail(u.Email); taken {
		return fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.PasswordHash = hash
	u.SystemTag = qr.TagFor(u.UserType)
	if u.FullName == "" {
		u.FullName = strings.Join(strings.Fields(u.FirstName+" "+u.MiddleName+" "+u.LastName), " ")
	}
	u.QRCodeActive = true
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	return s.col.Create(u)
}

// Update applies mutate to one user and bumps UpdatedAt.
func (s *Service) Update(id string, mutate func(*models.User)) error {
	return s.col.Update(id, func(u *models.User) {
		mutate(u)
		u.UpdatedAt = time.Now()
	})
}

func (s *Service) Remove(id string) error { return s.col.Remove(id) }

// Authenticate resolves idOrEmail and checks the password. 2FA, when the
// account has it enabled, is the caller's second step.
func (s *Service) Authenticate(idOrEmail, password string) (models.User, error) {
	u, ok := s.ByID(idOrEmail)
	if !ok {
		u, ok = s.ByEmail(idOrEmail)
	}
	if !ok {
		return models.User{}, ErrBadCredentials
	}
	if !u.IsActive {
		return models.User{}, ErrInactive
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return models.User{}, ErrBadCredentials
	}
	return u, nil
}

// AuthenticateQR validates a scanned identity envelope and resolves its
// user. The validation result is returned alongside so callers can surface
// the full error list.
func (s *Service) AuthenticateQR(payload string) (models.User, qr.Result, error) {
	env, res, err := qr.Decode(payload)
	if err != nil {
		return models.User{}, res, err
	}
	if !res.Valid {
		return models.User{}, res, fmt.Errorf("qr validation failed: %s", strings.Join(res.Errors, "; "))
	}
	u, ok := s.ByID(env.UserID)
	if !ok {
		return models.User{}, res, ErrBadCredentials
	}
	if !u.IsActive {
		return models.User{}, res, ErrInactive
	}
	if !u.QRCodeActive {
		return models.User{}, res, ErrQRInactive
	}
	return u, res, nil
}

// SetPassword replaces the stored hash.
func (s *Service) SetPassword(id, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.Update(id, func(u *models.User) { u.PasswordHash = hash })
}

// SetTwoFactor enables or disables TOTP for the account.
func (s *Service) SetTwoFactor(id string, enabled bool, key string) error {
	return s.Update(id, func(u *models.User) {
		u.TwoFactorEnabled = enabled
		if enabled {
			u.TwoFactorKey = key
		} else {
			u.TwoFactorKey = ""
		}
	})
}

// RegenerateQR mints a fresh identity envelope for the user, stores it, and
// returns the payload text.
func (s *Service) RegenerateQR(id string) (string, error) {
	u, ok := s.ByID(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	env := qr.Encode(qr.Identity{
		UserID:       u.ID,
		FullName:     u.FullName,
		UserType:     u.UserType,
		Department:   u.Department,
		Course:       u.Course,
		Year:         u.Year,
		Section:      u.Section,
		Position:     u.Role,
		TwoFactorKey: u.TwoFactorKey,
	})
	payload, err := env.Marshal()
	if err != nil {
		return "", err
	}
	now := time.Now()
	err = s.Update(id, func(u *models.User) {
		u.QRCodeData = payload
		u.QRCodeGeneratedAt = &now
		u.QRCodeActive = true
	})
	if err != nil {
		return "", err
	}
	return payload, nil
}
