// Package resetcode issues and verifies password-reset codes: one
// outstanding 6-digit code per email, fresh for ten minutes. Stale codes are
// caught at verification time; there is no background sweep.
package resetcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/storage"
)

const (
	Key = "jrmsu_pw_reset_codes"
	TTL = 10 * time.Minute
)

var (
	ErrNoCode   = errors.New("no reset code issued")
	ErrExpired  = errors.New("reset code expired")
	ErrMismatch = errors.New("reset code does not match")
)

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

func (s *Service) read() map[string]models.ResetCode {
	m, ok := storage.GetJSON[map[string]models.ResetCode](s.backend, Key)
	if !ok || m == nil {
		return map[string]models.ResetCode{}
	}
	return m
}

// Issue mints a fresh code for email, replacing any outstanding one.
func (s *Service) Issue(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	m := s.read()
	m[strings.ToLower(email)] = models.ResetCode{
		Code:      code,
		ExpiresAt: time.Now().Add(TTL).UnixMilli(),
	}
	if err := storage.PutJSON(s.backend, Key, m); err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrWriteFailed, err)
	}
	return code, nil
}

// Verify checks the outstanding code for email.
func (s *Service) Verify(email, code string) error {
	rec, ok := s.read()[strings.ToLower(email)]
	if !ok {
		return ErrNoCode
	}
	if time.Now().UnixMilli() > rec.ExpiresAt {
		return ErrExpired
	}
	if code != rec.Code {
		return ErrMismatch
	}
	return nil
}

// Clear drops the outstanding code after a completed reset.
func (s *Service) Clear(email string) {
	m := s.read()
	delete(m, strings.ToLower(email))
	if err := storage.PutJSON(s.backend, Key, m); err != nil {
		s.lg.Warnw("reset code clear dropped", "error", err)
	}
}
