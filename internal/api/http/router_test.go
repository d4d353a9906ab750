package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutorconnect/tutor-connect/internal/api/http/handlers"
	"github.com/tutorconnect/tutor-connect/internal/auth"
	"github.com/tutorconnect/tutor-connect/internal/config"
	"github.com/tutorconnect/tutor-connect/internal/events"
	"github.com/tutorconnect/tutor-connect/internal/observability"
	"github.com/tutorconnect/tutor-connect/internal/repository/repositorytest"
	"github.com/tutorconnect/tutor-connect/internal/service"
	"github.com/tutorconnect/tutor-connect/internal/storage"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type countingLimiter struct {
	mu    sync.Mutex
	count map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count[key]++
	return l.count[key] <= limit
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type testServer struct {
	app     *fiber.App
	store   *repositorytest.Store
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, config.AppConfig{Name: "tutor-connect"})
}

func newTestServerWith(t *testing.T, appCfg config.AppConfig) *testServer {
	t.Helper()
	store := repositorytest.NewStore()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	uploadCfg := config.UploadConfig{Dir: t.TempDir(), PublicBase: "/uploads", MaxBytes: 1 << 10}
	files, err := storage.NewLocalStorage(uploadCfg)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	cfg := config.Config{App: appCfg, Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}, Upload: uploadCfg}

	app := fiber.New(ServerConfig(cfg, logger))
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("tutor-connect", "test", handlers.Dependency{Name: "postgres", Check: okPinger{}}),
		Auth: handlers.NewAuthHandler(service.NewAccountService(cfg, service.AccountDependencies{
			Store: store, Tokens: tokens, Dispatcher: dispatcher, Logger: logger,
		})),
		Jobs:           handlers.NewJobsHandler(service.NewJobService(store)),
		Applications:   handlers.NewApplicationsHandler(service.NewApplicationService(store, dispatcher, logger)),
		Admin:          handlers.NewAdminHandler(service.NewAdminService(store, dispatcher, logger)),
		Upload:         handlers.NewUploadHandler(files),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Repos().Users),
		Metrics:        metrics,
		Limiter:        &countingLimiter{count: map[string]int{}},
		RateLimit:      config.RateLimitConfig{LoginAttempts: 3, RegisterAttempts: 20, UploadAttempts: 5, WindowSeconds: 60},
		Uploads:        uploadCfg,
	})
	return &testServer{app: app, store: store, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return out
}

type authData struct {
	User struct {
		ID     string `json:"id"`
		Role   string `json:"role"`
		Status string `json:"status"`
	} `json:"user"`
	Auth *struct {
		Token string `json:"token"`
	} `json:"auth"`
	Message string `json:"message"`
}

func person(email string) map[string]any {
	return map[string]any{"email": email, "password": "Abcdef12", "first_name": "Ada", "last_name": "Lovelace"}
}

func (s *testServer) setupAdmin(t *testing.T) authData {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/auth/admin/setup", "", person("admin@x.com"))
	if status != http.StatusCreated {
		t.Fatalf("admin setup: expected 201, got %d (%+v)", status, env.Error)
	}
	return decode[authData](t, env.Data)
}

func TestTeacherLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.setupAdmin(t)

	teacher := person("t@x.com")
	teacher["documents"] = []map[string]any{{"document_type": "id", "file_url": "/uploads/id.pdf", "file_name": "id.pdf"}}
	status, env := s.do(t, http.MethodPost, "/auth/teachers/register", "", teacher)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	reg := decode[authData](t, env.Data)
	if reg.User.Status != "pending" || reg.Auth != nil || reg.Message == "" {
		t.Fatalf("unexpected teacher registration: %+v", reg)
	}

	status, env = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "t@x.com", "password": "Abcdef12"})
	if status != http.StatusForbidden || env.Error.Code != "ACCOUNT_PENDING" {
		t.Fatalf("expected pending login rejection, got %d %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodPost, "/admin/approve-teacher", admin.Auth.Token, map[string]string{"user_id": reg.User.ID})
	if status != http.StatusOK {
		t.Fatalf("expected approve 200, got %d %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "t@x.com", "password": "Abcdef12"})
	if status != http.StatusOK {
		t.Fatalf("expected login 200, got %d %+v", status, env.Error)
	}
	login := decode[authData](t, env.Data)
	if login.User.Role != "teacher" || login.Auth == nil || login.Auth.Token == "" {
		t.Fatalf("unexpected login: %+v", login)
	}
}

func TestJobApplicationFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.setupAdmin(t)

	status, env := s.do(t, http.MethodPost, "/auth/students/register", "", person("s@x.com"))
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", status, env.Error)
	}
	student := decode[authData](t, env.Data)
	if student.User.Status != "approved" || student.Auth == nil {
		t.Fatalf("expected approved student with token, got %+v", student)
	}

	status, env = s.do(t, http.MethodPost, "/jobs", student.Auth.Token, map[string]any{"title": "Algebra Tutor", "description": "d"})
	if status != http.StatusForbidden {
		t.Fatalf("expected students to be forbidden from posting, got %d", status)
	}

	status, env = s.do(t, http.MethodPost, "/jobs", admin.Auth.Token, map[string]any{"title": "Algebra Tutor", "description": "Weekly sessions"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", status, env.Error)
	}
	job := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env.Data)

	status, env = s.do(t, http.MethodGet, "/jobs", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected public job list, got %d", status)
	}
	if jobs := decode[[]map[string]any](t, env.Data); len(jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(jobs))
	}

	apply := map[string]string{"job_id": job.ID, "cover_letter": "I love algebra"}
	status, env = s.do(t, http.MethodPost, "/applications", student.Auth.Token, apply)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", status, env.Error)
	}
	app := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env.Data)

	status, env = s.do(t, http.MethodPost, "/applications", student.Auth.Token, apply)
	if status != http.StatusBadRequest || env.Error.Code != "DUPLICATE_APPLICATION" {
		t.Fatalf("expected duplicate application, got %d %+v", status, env.Error)
	}

	decision := "/applications/" + app.ID + "/decision"
	status, env = s.do(t, http.MethodPost, decision, admin.Auth.Token, map[string]string{"decision": "accept"})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", status, env.Error)
	}
	if got := decode[struct {
		Status string `json:"status"`
	}](t, env.Data); got.Status != "accepted" {
		t.Fatalf("expected accepted, got %s", got.Status)
	}

	status, env = s.do(t, http.MethodPost, decision, admin.Auth.Token, map[string]string{"decision": "reject"})
	if status != http.StatusConflict || env.Error.Code != "INVALID_STATE" {
		t.Fatalf("expected invalid state, got %d %+v", status, env.Error)
	}
}

func TestAuthFailures(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/auth/me", "", nil)
	if status != http.StatusUnauthorized || env.Error == nil {
		t.Fatalf("expected 401, got %d", status)
	}
	status, _ = s.do(t, http.MethodGet, "/admin/stats", "garbage", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", status)
	}

	s.do(t, http.MethodPost, "/auth/students/register", "", person("s@x.com"))
	_, wrong := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "s@x.com", "password": "Nope12345"})
	_, unknown := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "x@x.com", "password": "Nope12345"})
	if wrong.Error == nil || unknown.Error == nil || wrong.Error.Message != unknown.Error.Message || wrong.Error.Code != unknown.Error.Code {
		t.Fatalf("expected identical login errors, got %+v and %+v", wrong.Error, unknown.Error)
	}

	s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "s@x.com", "password": "Nope12345"})
	status, env = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "s@x.com", "password": "Nope12345"})
	if status != http.StatusTooManyRequests || env.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected rate limit on fourth login, got %d %+v", status, env.Error)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	s.setupAdmin(t)
	_, env := s.do(t, http.MethodPost, "/auth/students/register", "", person("s@x.com"))
	student := decode[authData](t, env.Data)

	status, env := s.do(t, http.MethodGet, "/admin/stats", student.Auth.Token, nil)
	if status != http.StatusForbidden || env.Error.Code != "FORBIDDEN" {
		t.Fatalf("expected forbidden, got %d %+v", status, env.Error)
	}
}

func TestSuspendedTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.setupAdmin(t)
	_, env := s.do(t, http.MethodPost, "/auth/students/register", "", person("s@x.com"))
	student := decode[authData](t, env.Data)

	status, _ := s.do(t, http.MethodPost, "/admin/suspend-user", admin.Auth.Token, map[string]string{"user_id": student.User.ID})
	if status != http.StatusOK {
		t.Fatalf("expected suspend 200, got %d", status)
	}
	status, env = s.do(t, http.MethodGet, "/auth/me", student.Auth.Token, nil)
	if status != http.StatusForbidden || env.Error.Code != "ACCOUNT_SUSPENDED" {
		t.Fatalf("expected suspended token to be rejected, got %d %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodGet, "/admin/logs", admin.Auth.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected logs, got %d", status)
	}
	logs := decode[[]struct {
		Action string `json:"action"`
	}](t, env.Data)
	if len(logs) != 3 || logs[0].Action != "user_suspended" {
		t.Fatalf("unexpected logs: %+v", logs)
	}
}

func TestUploadOverHTTP(t *testing.T) {
	s := newTestServer(t)

	upload := func(name string, content []byte) (int, envelope) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = part.Write(content)
		_ = w.Close()
		req := httptest.NewRequest(http.MethodPost, "/upload", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		return s.send(t, req)
	}

	status, env := upload("cv.pdf", []byte("%PDF-1.4\n%test"))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", status, env.Error)
	}
	stored := decode[struct {
		URL string `json:"url"`
	}](t, env.Data)
	if !strings.HasPrefix(stored.URL, "/uploads/") || !strings.HasSuffix(stored.URL, ".pdf") {
		t.Fatalf("unexpected url %s", stored.URL)
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, stored.URL, nil), -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected stored file to be served, got %v %v", resp, err)
	}

	status, env = upload("notes.txt", []byte("plain text"))
	if status != http.StatusBadRequest || env.Error.Code != "UNSUPPORTED_FILE_TYPE" {
		t.Fatalf("expected unsupported type, got %d %+v", status, env.Error)
	}
	status, env = upload("big.pdf", append([]byte("%PDF-1.4\n"), make([]byte, 2<<10)...))
	if status != http.StatusBadRequest || env.Error.Code != "FILE_TOO_LARGE" {
		t.Fatalf("expected too large, got %d %+v", status, env.Error)
	}
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	s := newTestServer(t)

	if status, _ := s.do(t, http.MethodGet, "/health/ready", "", nil); status != http.StatusOK {
		t.Fatalf("expected ready, got %d", status)
	}
	status, env := s.do(t, http.MethodGet, "/nope", "", nil)
	if status != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected enveloped 404, got %d %+v", status, env.Error)
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `tutor_connect_http_requests_total{path="/health/ready",method="GET",status="200"} 1`) {
		t.Fatalf("expected ready request in metrics, got:\n%s", raw)
	}
}

func TestDraftJobsAreHiddenFromOthers(t *testing.T) {
	s := newTestServer(t)
	admin := s.setupAdmin(t)
	_, env := s.do(t, http.MethodPost, "/auth/students/register", "", person("s@x.com"))
	student := decode[authData](t, env.Data)

	status, env := s.do(t, http.MethodPost, "/jobs", admin.Auth.Token, map[string]any{"title": "Chemistry", "description": "d", "status": "draft"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", status, env.Error)
	}
	draft := decode[struct {
		ID string `json:"id"`
	}](t, env.Data)
	path := "/jobs/" + draft.ID

	status, env = s.do(t, http.MethodGet, path, "", nil)
	if status != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected anonymous draft read to be not found, got %d %+v", status, env.Error)
	}
	if status, _ = s.do(t, http.MethodGet, path, student.Auth.Token, nil); status != http.StatusNotFound {
		t.Fatalf("expected student draft read to be not found, got %d", status)
	}
	if status, _ = s.do(t, http.MethodGet, path, "garbage", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected a bad token to be refused, got %d", status)
	}
	if status, _ = s.do(t, http.MethodGet, path, admin.Auth.Token, nil); status != http.StatusOK {
		t.Fatalf("expected poster to read the draft, got %d", status)
	}
}

func TestPasswordChangeRevokesEarlierTokens(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(t, http.MethodPost, "/auth/students/register", "", person("s@x.com"))
	student := decode[authData](t, env.Data)

	// token iat has whole-second precision
	time.Sleep(time.Until(time.Now().Truncate(time.Second).Add(time.Second)))

	status, env := s.do(t, http.MethodPost, "/auth/password/change", student.Auth.Token,
		map[string]string{"current_password": "Abcdef12", "new_password": "Newpass123"})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", status, env.Error)
	}
	changed := decode[struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}](t, env.Data)

	if status, _ = s.do(t, http.MethodGet, "/auth/me", student.Auth.Token, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected old token to be revoked, got %d", status)
	}
	if status, _ = s.do(t, http.MethodGet, "/auth/me", changed.Auth.Token, nil); status != http.StatusOK {
		t.Fatalf("expected new token to work, got %d", status)
	}
}

func (s *testServer) loginFrom(t *testing.T, forwardedFor string) int {
	t.Helper()
	raw, _ := json.Marshal(map[string]string{"email": "nobody@x.com", "password": "Nope12345"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	status, _ := s.send(t, req)
	return status
}

func TestRateLimitKeysOnForwardedClientFromTrustedProxy(t *testing.T) {
	s := newTestServerWith(t, config.AppConfig{ProxyHeader: "X-Forwarded-For", TrustedProxies: []string{"0.0.0.0"}})
	for i := 0; i < 3; i++ {
		if status := s.loginFrom(t, "203.0.113.1"); status != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, status)
		}
	}
	if status := s.loginFrom(t, "203.0.113.1"); status != http.StatusTooManyRequests {
		t.Fatalf("expected first client to be limited, got %d", status)
	}
	if status := s.loginFrom(t, "203.0.113.2, 10.0.0.1"); status != http.StatusUnauthorized {
		t.Fatalf("expected second client to have its own bucket, got %d", status)
	}
}

func TestRateLimitIgnoresForwardedHeaderFromUntrustedPeer(t *testing.T) {
	s := newTestServerWith(t, config.AppConfig{ProxyHeader: "X-Forwarded-For", TrustedProxies: []string{"10.0.0.0/8"}})
	for i, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		if status := s.loginFrom(t, ip); status != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, status)
		}
	}
	if status := s.loginFrom(t, "203.0.113.4"); status != http.StatusTooManyRequests {
		t.Fatalf("expected spoofed addresses to share the peer's bucket, got %d", status)
	}
}
