package models

import "time"

// ActivityAction enumerates everything the portal writes to the activity log.
type ActivityAction string

const (
	ActionLogin          ActivityAction = "login"
	ActionLogout         ActivityAction = "logout"
	ActionPasswordChange ActivityAction = "password_change"
	ActionEmailUpdate    ActivityAction = "email_update"
	ActionMobileUpdate   ActivityAction = "mobile_update"
	ActionProfileUpdate  ActivityAction = "profile_update"
	ActionQRDownload     ActivityAction = "qr_download"
	ActionQRRegenerate   ActivityAction = "qr_regenerate"
	Action2FAEnable      ActivityAction = "2fa_enable"
	Action2FADisable     ActivityAction = "2fa_disable"
	ActionSettingsUpdate ActivityAction = "settings_update"
	ActionReportExport   ActivityAction = "report_export"
)

// ActivityRecord is one entry of the capped activity log.
type ActivityRecord struct {
	ID        string         `json:"id"` // ACT-<epoch-ms>
	UserID    string         `json:"userId"`
	Action    ActivityAction `json:"action"`
	Details   string         `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"` // ISO-8601
}

type ReservationRecord struct {
	ID          string `json:"id"` // RV-<epoch-ms>
	BookID      string `json:"bookId"`
	BookTitle   string `json:"bookTitle"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	CreatedAt   string `json:"createdAt"` // ISO-8601
}

type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "borrowed"
	BorrowReturned BorrowStatus = "returned"
	BorrowOverdue  BorrowStatus = "overdue"
)

type BorrowRecord struct {
	ID         string       `json:"id"` // BR-<epoch-ms>
	BookID     string       `json:"bookId"`
	BookTitle  string       `json:"bookTitle"`
	StudentID  string       `json:"studentId"`
	BorrowDate string       `json:"borrowDate"` // YYYY-MM-DD
	DueDate    string       `json:"dueDate"`
	ReturnDate string       `json:"returnDate,omitempty"`
	Status     BorrowStatus `json:"status"`
}

// User is a directory entry for either an admin or a student. Records live in
// the local store, so the password hash serializes with the rest.
type User struct {
	ID         string `json:"id"` // KC-23-A-00243 style for students, KCL-00001 for admins
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	UserType   string `json:"userType"` // admin | student

	Course  string `json:"course,omitempty"`
	Year    string `json:"year,omitempty"`
	Section string `json:"section,omitempty"`

	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`

	PasswordHash     string `json:"passwordHash"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
	TwoFactorKey     string `json:"twoFactorKey,omitempty"`

	QRCodeData        string     `json:"qrCodeData,omitempty"`
	QRCodeGeneratedAt *time.Time `json:"qrCodeGeneratedAt,omitempty"`
	QRCodeActive      bool       `json:"qrCodeActive"`

	SystemTag string    `json:"systemTag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsActive  bool      `json:"isActive"`

	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Session is one issued login token, keyed by JWT ID. The auth middleware
// rejects tokens whose session is revoked or expired.
type Session struct {
	JTI       string     `json:"jti"`
	UserID    string     `json:"userId"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ResetCode is one outstanding password-reset code, keyed externally by
// lower-cased email. A new request overwrites the previous code.
type ResetCode struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"` // epoch ms
}

// UIState holds per-user presentation flags. Pointer fields distinguish
// "unset" from "false" so saves merge instead of replace.
type UIState struct {
	SidebarCollapsed  *bool   `json:"sidebarCollapsed,omitempty"`
	PanelView         *string `json:"aiView,omitempty"` // compact | windowed | fullscreen
	LastPage          *string `json:"lastPage,omitempty"`
	NotificationsOpen *bool   `json:"notificationsOpen,omitempty"`
}

// Merge overlays the set fields of patch onto s.
func (s UIState) Merge(patch UIState) UIState {
	if patch.SidebarCollapsed != nil {
		s.SidebarCollapsed = patch.SidebarCollapsed
	}
	if patch.PanelView != nil {
		s.PanelView = patch.PanelView
	}
	if patch.LastPage != nil {
		s.LastPage = patch.LastPage
	}
	if patch.NotificationsOpen != nil {
		s.NotificationsOpen = patch.NotificationsOpen
	}
	return s
}

// RegistrationDraft is the in-progress multi-step registration form.
type RegistrationDraft struct {
	Step      int            `json:"step"`
	Fields    map[string]any `json:"fields,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
}
