package resetcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiselib/internal/models"
	"wiselib/internal/storage"
)

func TestIssueAndVerify(t *testing.T) {
	svc := New(storage.NewMemory(), nil)

	code, err := svc.Issue("Student@JRMSU.edu.ph")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)

	// Email lookup is case-insensitive.
	assert.NoError(t, svc.Verify("student@jrmsu.edu.ph", code))
}

func TestVerifyWithoutIssue(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	assert.ErrorIs(t, svc.Verify("nobody@jrmsu.edu.ph", "123456"), ErrNoCode)
}

func TestVerifyMismatch(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	code, err := svc.Issue("s@jrmsu.edu.ph")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, svc.Verify("s@jrmsu.edu.ph", wrong), ErrMismatch)
}

func TestVerifyExpired(t *testing.T) {
	b := storage.NewMemory()
	svc := New(b, nil)

	_, err := svc.Issue("s@jrmsu.edu.ph")
	require.NoError(t, err)

	// Age the stored code past its window.
	m, ok := storage.GetJSON[map[string]models.ResetCode](b, Key)
	require.True(t, ok)
	rec := m["s@jrmsu.edu.ph"]
	rec.ExpiresAt = time.Now().Add(-time.Minute).UnixMilli()
	m["s@jrmsu.edu.ph"] = rec
	require.NoError(t, storage.PutJSON(b, Key, m))

	assert.ErrorIs(t, svc.Verify("s@jrmsu.edu.ph", rec.Code), ErrExpired)
}

func TestReissueReplacesCode(t *testing.T) {
	svc := New(storage.NewMemory(), nil)

	first, err := svc.Issue("s@jrmsu.edu.ph")
	require.NoError(t, err)
	second, err := svc.Issue("s@jrmsu.edu.ph")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, svc.Verify("s@jrmsu.edu.ph", first), ErrMismatch)
	}
	assert.NoError(t, svc.Verify("s@jrmsu.edu.ph", second))
}

func TestClear(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	code, err := svc.Issue("s@jrmsu.edu.ph")
	require.NoError(t, err)

	svc.Clear("S@jrmsu.edu.ph")
	assert.ErrorIs(t, svc.Verify("s@jrmsu.edu.ph", code), ErrNoCode)
}
