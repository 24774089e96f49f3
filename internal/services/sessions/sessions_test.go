package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiselib/internal/storage"
)

func TestRegisterAndActive(t *testing.T) {
	svc := New(storage.NewMemory(), nil)

	require.NoError(t, svc.Register("jti-1", "KC-1", time.Now().Add(time.Hour)))
	assert.True(t, svc.Active("jti-1"))
	assert.False(t, svc.Active("jti-2"))
}

func TestExpiredSessionInactive(t *testing.T) {
	svc := New(storage.NewMemory(), nil)

	require.NoError(t, svc.Register("jti-1", "KC-1", time.Now().Add(-time.Minute)))
	assert.False(t, svc.Active("jti-1"))
}

func TestRevoke(t *testing.T) {
	svc := New(storage.NewMemory(), nil)

	require.NoError(t, svc.Register("jti-1", "KC-1", time.Now().Add(time.Hour)))
	require.NoError(t, svc.Revoke("jti-1"))
	assert.False(t, svc.Active("jti-1"))

	// Revoking twice or revoking an unknown JTI is a no-op.
	assert.NoError(t, svc.Revoke("jti-1"))
	assert.NoError(t, svc.Revoke("never-issued"))
}

func TestDuplicateJTIRejected(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	require.NoError(t, svc.Register("jti-1", "KC-1", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, svc.Register("jti-1", "KC-2", time.Now().Add(time.Hour)), storage.ErrDuplicateKey)
}
