package qr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload marks scan text that is not parseable JSON.
var ErrMalformedPayload = errors.New("malformed payload")

// Result carries the full outcome of one validation pass. Errors decide the
// verdict; warnings only record deprecated field usage.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Known legacy aliases, checked in order after the current field name. The
// first match satisfies the field and is recorded as a warning.
var fieldAliases = map[string][]string{
	"userId":    {"id"},
	"fullName":  {"name"},
	"systemTag": {"logo"},
}

var tokenAliases = []string{"authCode", "realTimeAuthCode", "encryptedToken", "encryptedPasswordToken"}

// Decode parses an identity payload, resolves legacy aliases into the
// canonical envelope, and validates it. A non-JSON payload returns
// ErrMalformedPayload; every other problem lands in the Result.
func Decode(payload string) (Envelope, Result, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Envelope{}, Result{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	env, res := validate(raw)
	return env, res, nil
}

// Validate checks a payload without returning the decoded envelope.
func Validate(payload string) (Result, error) {
	_, res, err := Decode(payload)
	return res, err
}

func validate(raw map[string]any) (Envelope, Result) {
	var res Result

	resolve := func(field string) (string, bool) {
		if s, ok := raw[field].(string); ok && s != "" {
			return s, true
		}
		for _, alias := range fieldAliases[field] {
			if s, ok := raw[alias].(string); ok && s != "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("Using deprecated %q field instead of %q", alias, field))
				return s, true
			}
		}
		return "", false
	}

	var env Envelope
	var ok bool

	if env.FullName, ok = resolve("fullName"); !ok {
		res.Errors = append(res.Errors, "Missing or invalid fullName")
	}
	if env.UserID, ok = resolve("userId"); !ok {
		res.Errors = append(res.Errors, "Missing or invalid userId")
	}
	env.UserType, _ = raw["userType"].(string)
	if env.UserType != UserTypeAdmin && env.UserType != UserTypeStudent {
		res.Errors = append(res.Errors, `Missing or invalid userType (must be "admin" or "student")`)
	}
	env.SystemID, _ = raw["systemId"].(string)
	if env.SystemID != SystemID {
		res.Errors = append(res.Errors, fmt.Sprintf("Missing or invalid systemId (must be %q)", SystemID))
	}
	if ts, ok := raw["timestamp"].(float64); ok {
		env.Timestamp = int64(ts)
	} else {
		res.Errors = append(res.Errors, "Missing or invalid timestamp")
	}
	env.SystemTag, ok = resolve("systemTag")
	if !ok || (env.SystemTag != TagAdmin && env.SystemTag != TagStudent) {
		res.Errors = append(res.Errors, fmt.Sprintf("Missing or invalid systemTag (must be %q or %q)", TagAdmin, TagStudent))
	}

	env.SessionToken, _ = raw["sessionToken"].(string)
	if env.SessionToken == "" {
		for _, alias := range tokenAliases {
			if s, ok := raw[alias].(string); ok && s != "" {
				env.SessionToken = s
				res.Warnings = append(res.Warnings, fmt.Sprintf("Using legacy %q token field instead of \"sessionToken\"", alias))
				break
			}
		}
		if env.SessionToken == "" {
			res.Errors = append(res.Errors, "Missing authentication token (sessionToken or legacy auth fields required)")
		}
	}

	// Tag/role consistency is a distinct failure, not a missing field.
	if (env.UserType == UserTypeAdmin || env.UserType == UserTypeStudent) &&
		(env.SystemTag == TagAdmin || env.SystemTag == TagStudent) {
		if expected := TagFor(env.UserType); env.SystemTag != expected {
			res.Errors = append(res.Errors, fmt.Sprintf("System tag mismatch: expected %s for %s, got %s", expected, env.UserType, env.SystemTag))
		}
	}

	env.Role, _ = raw["role"].(string)
	env.TwoFactorKey, _ = raw["twoFactorKey"].(string)
	if env.TwoFactorKey == "" {
		env.TwoFactorKey, _ = raw["twoFactorSetupKey"].(string)
	}
	env.Department, _ = raw["department"].(string)
	env.Course, _ = raw["course"].(string)
	env.Year, _ = raw["year"].(string)
	env.Section, _ = raw["section"].(string)
	env.Position, _ = raw["position"].(string)

	res.Valid = len(res.Errors) == 0
	return env, res
}
