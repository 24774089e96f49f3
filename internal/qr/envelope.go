// Package qr implements the payload embedded in identity and book label
// QR codes: a canonical encoder, a tolerant validator that understands the
// field names of older generations of codes, and PNG rendering.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

const (
	SystemID   = "JRMSU-LIBRARY"
	TagAdmin   = "JRMSU-KCL"
	TagStudent = "JRMSU-KCS"

	UserTypeAdmin   = "admin"
	UserTypeStudent = "student"
)

// Envelope is the canonical identity payload. The encoder always emits the
// new-format fields; the legacy fields exist so codes minted by older
// front-ends still decode.
type Envelope struct {
	FullName     string `json:"fullName"`
	UserID       string `json:"userId"`
	UserType     string `json:"userType"`
	SystemID     string `json:"systemId"`
	SystemTag    string `json:"systemTag"`
	Timestamp    int64  `json:"timestamp"`
	SessionToken string `json:"sessionToken"`
	Role         string `json:"role"`

	// Legacy authentication fields, accepted on decode only.
	AuthCode               string `json:"authCode,omitempty"`
	RealTimeAuthCode       string `json:"realTimeAuthCode,omitempty"`
	EncryptedToken         string `json:"encryptedToken,omitempty"`
	EncryptedPasswordToken string `json:"encryptedPasswordToken,omitempty"`

	TwoFactorKey      string `json:"twoFactorKey,omitempty"`
	TwoFactorSetupKey string `json:"twoFactorSetupKey,omitempty"`
	Department        string `json:"department,omitempty"`
	Course            string `json:"course,omitempty"`
	Year              string `json:"year,omitempty"`
	Section           string `json:"section,omitempty"`
	Position          string `json:"position,omitempty"`
}

// Identity is the user data an envelope is minted from.
type Identity struct {
	UserID       string
	FullName     string
	UserType     string
	Department   string
	Course       string
	Year         string
	Section      string
	Position     string
	TwoFactorKey string
}

// TagFor maps a user type to its system tag.
func TagFor(userType string) string {
	if userType == UserTypeAdmin {
		return TagAdmin
	}
	return TagStudent
}

// RoleFor maps a user type to its display role.
func RoleFor(userType string) string {
	if userType == UserTypeAdmin {
		return "Administrator"
	}
	return "Student"
}

// SessionToken derives the correlation token embedded in an envelope. It is
// a reversible encoding, not a credential.
func SessionToken(userID string, ts int64) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s-%d", userID, ts)))
}

// Encode mints a canonical envelope for id at the current time.
func Encode(id Identity) Envelope {
	return EncodeAt(id, time.Now())
}

// EncodeAt is Encode with an explicit clock, for deterministic callers.
func EncodeAt(id Identity, now time.Time) Envelope {
	ts := now.UnixMilli()
	return Envelope{
		FullName:     id.FullName,
		UserID:       id.UserID,
		UserType:     id.UserType,
		SystemID:     SystemID,
		SystemTag:    TagFor(id.UserType),
		Timestamp:    ts,
		SessionToken: SessionToken(id.UserID, ts),
		Role:         RoleFor(id.UserType),
		TwoFactorKey: id.TwoFactorKey,
		// Mirrored for decoders that predate the rename.
		TwoFactorSetupKey: id.TwoFactorKey,
		Department:        id.Department,
		Course:            id.Course,
		Year:              id.Year,
		Section:           id.Section,
		Position:          id.Position,
	}
}

// Marshal renders the envelope as the QR text payload.
func (e Envelope) Marshal() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
