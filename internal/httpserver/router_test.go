package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wiselib/internal/httpserver/handlers"
	"wiselib/internal/models"
	"wiselib/internal/notify"
	"wiselib/internal/services/activity"
	"wiselib/internal/services/books"
	"wiselib/internal/services/borrow"
	"wiselib/internal/services/prefs"
	"wiselib/internal/services/regdraft"
	"wiselib/internal/services/reservations"
	"wiselib/internal/services/resetcode"
	"wiselib/internal/services/sessions"
	"wiselib/internal/services/stats"
	"wiselib/internal/services/users"
	"wiselib/internal/storage"
)

type testEnv struct {
	router  http.Handler
	backend storage.Backend
	users   *users.Service
	books   *books.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	b := storage.NewMemory()
	bus := notify.NewBus()
	userSvc := users.New(b, nil)
	bookSvc := books.New(b, nil)
	borrowSvc := borrow.New(b, bookSvc, nil)

	d := handlers.Deps{
		Users:        userSvc,
		Sessions:     sessions.New(b, nil),
		Books:        bookSvc,
		Borrow:       borrowSvc,
		Reservations: reservations.New(b, nil),
		Activity:     activity.New(b, bus, nil),
		Prefs:        prefs.New(b, bus, nil),
		Reset:        resetcode.New(b, nil),
		Regdraft:     regdraft.New(b, nil),
		Stats:        stats.New(bookSvc, borrowSvc, bus, nil),
		Log:          zap.NewNop().Sugar(),
	}
	return &testEnv{router: NewRouter(d), backend: b, users: userSvc, books: bookSvc}
}

// issuedCode digs the outstanding reset code out of the store, standing in
// for the mail delivery the station does not have.
func (e *testEnv) issuedCode(t *testing.T, email string) string {
	t.Helper()
	m, ok := storage.GetJSON[map[string]models.ResetCode](e.backend, resetcode.Key)
	require.True(t, ok)
	rec, ok := m[email]
	require.True(t, ok)
	return rec.Code
}

func (e *testEnv) seedUser(t *testing.T, id, userType, password string) {
	t.Helper()
	require.NoError(t, e.users.Create(models.User{
		ID: id, FirstName: "Test", LastName: userType,
		Email: id + "@jrmsu.edu.ph", UserType: userType,
	}, password))
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, id, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"identifier": id, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginFlow(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "KC-1", "student", "pw123")

	t.Run("bad credentials", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"identifier": "KC-1", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("success then me", func(t *testing.T) {
		token := e.login(t, "KC-1", "pw123")
		w := e.do(t, http.MethodGet, "/v1/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
		assert.Equal(t, "KC-1", me["id"])
	})

	t.Run("logout revokes session", func(t *testing.T) {
		token := e.login(t, "KC-1", "pw123")
		w := e.do(t, http.MethodPost, "/v1/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = e.do(t, http.MethodGet, "/v1/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/v1/me", "/v1/books", "/v1/borrow", "/v1/stats"} {
		w := e.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestQRLogin(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "KC-1", "student", "pw123")
	payload, err := e.users.RegenerateQR("KC-1")
	require.NoError(t, err)

	t.Run("valid envelope", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/v1/auth/qr", "", map[string]string{"payload": payload})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["token"])
	})

	t.Run("not json", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/v1/auth/qr", "", map[string]string{"payload": "garbage"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid envelope returns error list", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/v1/auth/qr", "", map[string]string{"payload": `{"fullName":"x"}`})
		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Errors []string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Errors)
	})
}

func TestRegisterRejectsMalformedIDs(t *testing.T) {
	e := newTestEnv(t)

	for _, id := range []string{"x/../../escape", "a/b", `a\b`, "..", "a b"} {
		w := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]any{
			"id": id, "email": "u@jrmsu.edu.ph", "password": "pw", "userType": "student",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}

	w := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"id": "KC-23-A-00243", "email": "u@jrmsu.edu.ph", "password": "pw", "userType": "student",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBookRoutesRoleGating(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "KCL-1", "admin", "adminpw")
	e.seedUser(t, "KC-1", "student", "pw123")
	admin := e.login(t, "KCL-1", "adminpw")
	student := e.login(t, "KC-1", "pw123")

	book := map[string]any{"id": "B1", "title": "T", "author": "A", "category": "CS", "copies": 2, "available": 2}

	w := e.do(t, http.MethodPost, "/v1/books", student, book)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPost, "/v1/books", admin, book)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/v1/books", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.BookRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "B1", list[0].ID)
}

func TestBorrowAndReturnOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "KC-1", "student", "pw123")
	require.NoError(t, e.books.Create(models.BookRecord{
		ID: "B1", Title: "T", Copies: 1, Available: 1, Status: models.BookAvailable,
	}))
	token := e.login(t, "KC-1", "pw123")

	w := e.do(t, http.MethodPost, "/v1/borrow", token, map[string]string{"bookId": "B1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rec models.BorrowRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "KC-1", rec.StudentID)

	// Second borrower is turned away.
	w = e.do(t, http.MethodPost, "/v1/borrow", token, map[string]string{"bookId": "B1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodPost, "/v1/borrow/"+rec.ID+"/return", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/v1/borrow", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.BorrowRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, models.BorrowReturned, mine[0].Status)
}

func TestPasswordResetOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "KC-1", "student", "oldpw")

	w := e.do(t, http.MethodPost, "/v1/auth/reset/request", "", map[string]string{"email": "KC-1@jrmsu.edu.ph"})
	require.Equal(t, http.StatusOK, w.Code)

	code := e.issuedCode(t, "kc-1@jrmsu.edu.ph")

	w = e.do(t, http.MethodPost, "/v1/auth/reset/verify", "", map[string]string{
		"email": "kc-1@jrmsu.edu.ph", "code": code,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/v1/auth/reset", "", map[string]string{
		"email": "kc-1@jrmsu.edu.ph", "code": code, "newPassword": "newpw",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The code is single-use.
	w = e.do(t, http.MethodPost, "/v1/auth/reset/verify", "", map[string]string{
		"email": "kc-1@jrmsu.edu.ph", "code": code,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.login(t, "KC-1", "newpw")
}

func TestPrefsOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "KC-1", "student", "pw123")
	token := e.login(t, "KC-1", "pw123")

	w := e.do(t, http.MethodPatch, "/v1/prefs", token, map[string]any{"sidebarCollapsed": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/v1/prefs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		State models.UIState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.State.SidebarCollapsed)
	assert.True(t, *resp.State.SidebarCollapsed)
}

func TestRegistrationDraftOverHTTP(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/v1/register/draft", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodPut, "/v1/register/draft", "", map[string]any{
		"step": 2, "fields": map[string]string{"firstName": "Juan"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/v1/register/draft", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var draft models.RegistrationDraft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &draft))
	assert.Equal(t, 2, draft.Step)

	w = e.do(t, http.MethodDelete, "/v1/register/draft", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodGet, "/v1/register/draft", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestStatsOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "KC-1", "student", "pw123")
	require.NoError(t, e.books.Create(models.BookRecord{
		ID: "B1", Title: "T", Copies: 2, Available: 2, Status: models.BookAvailable,
	}))
	token := e.login(t, "KC-1", "pw123")

	w := e.do(t, http.MethodGet, "/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var live stats.Live
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &live))
	assert.Equal(t, 1, live.TotalBooks)
}

func TestBookQRPNG(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "KC-1", "student", "pw123")
	require.NoError(t, e.books.Create(models.BookRecord{
		ID: "B1", Title: "T", Copies: 1, Available: 1, Status: models.BookAvailable,
	}))
	token := e.login(t, "KC-1", "pw123")

	w := e.do(t, http.MethodGet, "/v1/books/B1/qr", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.Greater(t, w.Body.Len(), 4)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])
}
