package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"tripmate/internal/config"
	"tripmate/internal/database"
	"tripmate/internal/email"
	"tripmate/internal/middleware"
	"tripmate/internal/models"
	"tripmate/internal/token"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

func newTestServer(t *testing.T) (*gin.Engine, *sql.DB, *token.Manager) {
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	cfg := &config.Config{
		DatabasePath: ":memory:",
		Port:         "8080",
		BaseURL:      "http://localhost:8080",
		SecretKey:    "test-secret",
		TokenTTL:     24 * time.Hour,
		Environment:  "development",
	}

	tokens := token.NewManager(cfg.SecretKey, cfg.TokenTTL)

	r := gin.New()
	r.SetFuncMap(template.FuncMap{
		"formatTime": func(t time.Time) string { return t.Format("Mon, Jan 2 at 15:04") },
		"formatDate": func(t time.Time) string { return t.Format("Jan 2, 2006") },
	})
	r.LoadHTMLGlob("../../templates/*.html")

	SetupRoutes(r, db, cfg, tokens, email.NewService(cfg))

	return r, db, tokens
}

func createTestUser(t *testing.T, db *sql.DB, username string) *models.User {
	user, err := database.CreateUser(db, username, username+"@example.com", "Password1")
	if err != nil {
		t.Fatal("Failed to create test user:", err)
	}
	return user
}

func authCookie(t *testing.T, tokens *token.Manager, username string) *http.Cookie {
	signed, err := tokens.Issue(username)
	if err != nil {
		t.Fatal("Failed to issue test token:", err)
	}
	return &http.Cookie{Name: middleware.TokenCookie, Value: signed}
}

func postForm(r *gin.Engine, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPath(r *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := getPath(r, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Abcdefg1", true},
		{"abcdefg1", false}, // no uppercase
		{"ABCDEFG1", false}, // no lowercase
		{"Abcdefgh", false}, // does not end in a digit
		{"Ab1", false},      // too short
		{"Abcdef1x", false}, // digit not last
		{"Pässwort1", true},
	}

	for _, tc := range cases {
		if got := validPassword(tc.password); got != tc.valid {
			t.Errorf("validPassword(%q) = %v, want %v", tc.password, got, tc.valid)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := getPath(r, "/mainpage", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Token is missing") {
		t.Errorf("Expected missing-token error, got %s", w.Body.String())
	}
}

func TestProtectedRoutesRejectExpiredToken(t *testing.T) {
	r, db, _ := newTestServer(t)
	createTestUser(t, db, "testuser")

	expired := token.NewManager("test-secret", -time.Hour)
	w := getPath(r, "/mainpage", authCookie(t, expired, "testuser"))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for expired token, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Token is invalid") {
		t.Errorf("Expected invalid-token error, got %s", w.Body.String())
	}
}

func TestProtectedRoutesRejectForgedToken(t *testing.T) {
	r, db, _ := newTestServer(t)
	createTestUser(t, db, "testuser")

	forged := token.NewManager("some-other-secret", time.Hour)
	w := getPath(r, "/mainpage", authCookie(t, forged, "testuser"))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for forged token, got %d", w.Code)
	}
}

func TestSignupIssuesCookie(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := postForm(r, "/auth/signup", url.Values{
		"username": {"newuser"},
		"password": {"Password1"},
		"email":    {"newuser@example.com"},
	}, nil)

	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302 after signup, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/mainpage" {
		t.Errorf("Expected redirect to /mainpage, got %q", loc)
	}

	var tokenCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			tokenCookie = c
		}
	}
	if tokenCookie == nil || tokenCookie.Value == "" {
		t.Fatal("Expected a token cookie after signup")
	}

	w = getPath(r, "/mainpage", tokenCookie)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with signup cookie, got %d", w.Code)
	}
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := postForm(r, "/auth/signup", url.Values{
		"username": {"newuser"},
		"password": {"weak"},
		"email":    {"newuser@example.com"},
	}, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for weak password, got %d", w.Code)
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	r, db, _ := newTestServer(t)
	createTestUser(t, db, "taken")

	w := postForm(r, "/auth/signup", url.Values{
		"username": {"taken"},
		"password": {"Password1"},
		"email":    {"other@example.com"},
	}, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate username, got %d", w.Code)
	}
}

func TestAdmitRejectsBadCredentials(t *testing.T) {
	r, db, _ := newTestServer(t)
	createTestUser(t, db, "testuser")

	w := postForm(r, "/auth/admit", url.Values{
		"username": {"testuser"},
		"password": {"WrongPass1"},
	}, nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad credentials, got %d", w.Code)
	}
}

func TestCreateAndJoinTrip(t *testing.T) {
	r, db, tokens := newTestServer(t)
	creator := createTestUser(t, db, "creator")
	joiner := createTestUser(t, db, "joiner")

	w := postForm(r, "/itinerary/new", url.Values{"trip_name": {"Tokyo 2026"}},
		authCookie(t, tokens, creator.Username))
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302 after creating a trip, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/trip/") {
		t.Fatalf("Expected redirect to the trip page, got %q", loc)
	}

	trip, err := database.GetTripByName(db, "Tokyo 2026")
	if err != nil {
		t.Fatal("Failed to load created trip:", err)
	}

	joinerCookie := authCookie(t, tokens, joiner.Username)

	w = postForm(r, "/itinerary/join/", url.Values{"invite_code": {trip.InviteCode}}, joinerCookie)
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302 after joining, got %d: %s", w.Code, w.Body.String())
	}

	w = postForm(r, "/itinerary/join/", url.Values{"invite_code": {trip.InviteCode}}, joinerCookie)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 when already a member, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already part") {
		t.Errorf("Expected already-a-member message, got %s", w.Body.String())
	}

	w = postForm(r, "/itinerary/join/", url.Values{"invite_code": {"ZZZZZZ"}}, joinerCookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown invite code, got %d", w.Code)
	}
}

func TestJoinByInviteToken(t *testing.T) {
	r, db, tokens := newTestServer(t)
	creator := createTestUser(t, db, "creator")
	joiner := createTestUser(t, db, "joiner")

	trip, err := database.CreateTrip(db, creator.ID, "Lisbon")
	if err != nil {
		t.Fatal("Failed to create trip:", err)
	}

	invite, err := database.CreateTripInvite(db, trip.ID, "joiner@example.com")
	if err != nil {
		t.Fatal("Failed to create invite:", err)
	}

	joinerCookie := authCookie(t, tokens, joiner.Username)

	w := getPath(r, "/itinerary/join?token="+invite.Token, joinerCookie)
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302 after joining by token, got %d: %s", w.Code, w.Body.String())
	}

	member, err := database.IsTripMember(db, trip.ID, joiner.ID)
	if err != nil {
		t.Fatal("Failed to check membership:", err)
	}
	if !member {
		t.Error("Joiner should be enrolled after using the invite link")
	}

	// The token is single use.
	w = getPath(r, "/itinerary/join?token="+invite.Token, joinerCookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 reusing a consumed token, got %d", w.Code)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	r, db, tokens := newTestServer(t)
	user := createTestUser(t, db, "testuser")
	cookie := authCookie(t, tokens, user.Username)

	trip, err := database.CreateTrip(db, user.ID, "Oslo")
	if err != nil {
		t.Fatal("Failed to create trip:", err)
	}

	path := "/budget/" + strconv.Itoa(trip.ID) + "/expenses"

	w := getPath(r, path, cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before the first budget write, got %d", w.Code)
	}

	body, _ := json.Marshal(map[string]any{"category": "hotel", "amount": 420.5})
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 after upserting an expense, got %d: %s", w.Code, w.Body.String())
	}

	w = getPath(r, path, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 reading the budget back, got %d", w.Code)
	}

	var budget map[string]float64
	if err := json.Unmarshal(w.Body.Bytes(), &budget); err != nil {
		t.Fatal("Failed to decode budget response:", err)
	}
	if budget["hotel"] != 420.5 {
		t.Errorf("Expected hotel 420.5, got %v", budget["hotel"])
	}
	if budget["flight"] != 0 {
		t.Errorf("Untouched categories should be 0, got flight %v", budget["flight"])
	}

	body, _ = json.Marshal(map[string]any{"category": "users", "amount": 1})
	req = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown category, got %d", w.Code)
	}
}

func TestChatEndpoints(t *testing.T) {
	r, db, tokens := newTestServer(t)
	user := createTestUser(t, db, "testuser")
	cookie := authCookie(t, tokens, user.Username)

	trip, err := database.CreateTrip(db, user.ID, "Berlin")
	if err != nil {
		t.Fatal("Failed to create trip:", err)
	}

	path := "/chat/" + strconv.Itoa(trip.ID) + "/messages"

	w := postForm(r, path, url.Values{"message": {""}}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty message, got %d", w.Code)
	}

	for _, msg := range []string{"first", "second"} {
		w = postForm(r, path, url.Values{"message": {msg}}, cookie)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201 posting %q, got %d: %s", msg, w.Code, w.Body.String())
		}
	}

	w = getPath(r, path, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing messages, got %d", w.Code)
	}

	var messages []struct {
		Username  string `json:"username"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &messages); err != nil {
		t.Fatal("Failed to decode messages:", err)
	}

	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Message != "first" || messages[1].Message != "second" {
		t.Error("Messages should come back in posting order")
	}
	if messages[0].Username != "testuser" {
		t.Errorf("Expected sender username, got %q", messages[0].Username)
	}
	if _, err := time.Parse(time.RFC3339, messages[0].Timestamp); err != nil {
		t.Errorf("Timestamp %q should be RFC 3339: %v", messages[0].Timestamp, err)
	}
}

func TestChatUnknownTrip(t *testing.T) {
	r, db, tokens := newTestServer(t)
	user := createTestUser(t, db, "testuser")

	w := getPath(r, "/chat/999/messages", authCookie(t, tokens, user.Username))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown trip, got %d", w.Code)
	}
}

