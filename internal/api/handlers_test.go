package api

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LeventeLantos/sms-dashboard/internal/cache"
	"github.com/LeventeLantos/sms-dashboard/internal/repo"
	"github.com/LeventeLantos/sms-dashboard/internal/service"
	"github.com/LeventeLantos/sms-dashboard/internal/session"
)

const testAdminPass = "let-me-in"

type fakeGateway struct {
	err   error
	calls int
}

var _ service.SendClient = (*fakeGateway)(nil)

func (f *fakeGateway) Send(ctx context.Context, from, to, body string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "SM-test", nil
}

type testServer struct {
	mux     http.Handler
	gateway *fakeGateway
	logPath string
	cookies []*http.Cookie
}

func newTestServer(t *testing.T, logContents string) *testServer {
	t.Helper()

	logPath := filepath.Join(t.TempDir(), "sms_log.txt")
	if logContents != "" {
		if err := os.WriteFile(logPath, []byte(logContents), 0o644); err != nil {
			t.Fatalf("failed to seed log: %v", err)
		}
	}
	return newTestServerAt(t, logPath)
}

func newTestServerAt(t *testing.T, logPath string) *testServer {
	t.Helper()

	gw := &fakeGateway{}
	dash := service.NewDashboard(
		service.NewSender(gw, "+15550000000"),
		repo.NewFileLogRepo(logPath),
		cache.NewMemorySessionCache(time.Hour),
		testAdminPass,
	)

	sessions, err := session.NewManager([]byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	return &testServer{
		mux:     Router(NewHandler(dash, sessions)),
		gateway: gw,
		logPath: logPath,
	}
}

// do sends a request carrying the cookies collected so far, like a browser.
func (s *testServer) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	if set := rr.Result().Cookies(); len(set) > 0 {
		s.cookies = set
	}
	return rr
}

func (s *testServer) logFile(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(s.logPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("failed to read log: %v", err)
	}
	return string(data)
}

func body(rr *httptest.ResponseRecorder) string {
	return html.UnescapeString(rr.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")

	rr := s.do(http.MethodGet, "/healthz", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%q", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("failed to decode json: %v body=%q", err, rr.Body.String())
	}
	if v, ok := m["ok"].(bool); !ok || !v {
		t.Fatalf("expected {ok:true}, got %v", m)
	}
}

func TestHome_RendersDashboard(t *testing.T) {
	s := newTestServer(t, "")

	rr := s.do(http.MethodGet, "/", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html, got %q", ct)
	}

	b := body(rr)
	for _, action := range []string{"/send-sms", "/delete-log-file", "/delete-line", "/view-log"} {
		if !strings.Contains(b, `action="`+action+`"`) {
			t.Fatalf("expected form posting to %s", action)
		}
	}
	if strings.Contains(b, `id="session-log"`) {
		t.Fatalf("expected no session table for a new session")
	}
	if strings.Contains(b, `id="admin-message"`) || strings.Contains(b, `id="log-content"`) {
		t.Fatalf("expected no admin output on plain render")
	}
	if len(s.cookies) != 1 || s.cookies[0].Name != session.CookieName {
		t.Fatalf("expected session cookie, got %+v", s.cookies)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	s := newTestServer(t, "")

	if rr := s.do(http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := s.do(http.MethodGet, "/send-sms", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestSendSMS_RedirectsAndRecords(t *testing.T) {
	s := newTestServer(t, "")

	rr := s.do(http.MethodPost, "/send-sms", url.Values{"to": {"+15551234567"}, "message": {"hello"}})

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d body=%q", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	if s.gateway.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", s.gateway.calls)
	}

	log := s.logFile(t)
	if !strings.Contains(log, "| TO: +15551234567 | MESSAGE: hello | STATUS: ✅ Sent\n") {
		t.Fatalf("unexpected log %q", log)
	}

	page := body(s.do(http.MethodGet, "/", nil))
	if !strings.Contains(page, `id="session-log"`) {
		t.Fatalf("expected session table after send")
	}
	for _, want := range []string{"<td>+15551234567</td>", "<td>hello</td>", "<td>✅ Sent</td>"} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
}

func TestSendSMS_GatewayFailureEndToEnd(t *testing.T) {
	s := newTestServer(t, "")
	s.gateway.err = errors.New("invalid number")

	rr := s.do(http.MethodPost, "/send-sms", url.Values{"to": {"+15551234567"}, "message": {"hello"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}

	page := body(s.do(http.MethodGet, "/", nil))
	if !strings.Contains(page, "<td>❌ invalid number</td>") {
		t.Fatalf("expected failure status in session table, got %q", page)
	}
	if strings.Contains(page, `id="admin-message"`) {
		t.Fatalf("send failures must not show an admin banner")
	}

	lines := strings.Split(strings.TrimSuffix(s.logFile(t), "\n"), "\n")
	last := lines[len(lines)-1]
	for _, want := range []string{"TO: +15551234567", "MESSAGE: hello", "invalid number"} {
		if !strings.Contains(last, want) {
			t.Fatalf("expected last log line to contain %q, got %q", want, last)
		}
	}
}

func TestSendSMS_EscapesUserInput(t *testing.T) {
	s := newTestServer(t, "")

	s.do(http.MethodPost, "/send-sms", url.Values{"to": {"+1"}, "message": {"<script>x</script>"}})

	raw := s.do(http.MethodGet, "/", nil).Body.String()
	if strings.Contains(raw, "<script>x</script>") {
		t.Fatalf("expected message to be html-escaped")
	}
}

func TestSendSMS_MissingFieldsRejected(t *testing.T) {
	cases := []struct {
		name  string
		form  url.Values
		field string
	}{
		{"no to", url.Values{"message": {"hi"}}, "to"},
		{"blank to", url.Values{"to": {"  "}, "message": {"hi"}}, "to"},
		{"no message", url.Values{"to": {"+1"}}, "message"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, "")

			rr := s.do(http.MethodPost, "/send-sms", tc.form)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.field) {
				t.Fatalf("expected error naming %q, got %q", tc.field, rr.Body.String())
			}
			if s.gateway.calls != 0 {
				t.Fatalf("gateway must not be called")
			}
			if log := s.logFile(t); log != "" {
				t.Fatalf("log must stay untouched, got %q", log)
			}
		})
	}
}

func TestAdmin_WrongPassword(t *testing.T) {
	const contents = "one\ntwo\n"

	cases := []struct {
		path string
		form url.Values
	}{
		{"/delete-log-file", url.Values{"admin_pass": {"nope"}}},
		{"/delete-line", url.Values{"admin_pass": {"nope"}, "line_number": {"1"}}},
		{"/view-log", url.Values{"admin_pass": {"nope"}}},
		{"/view-log", url.Values{}},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			s := newTestServer(t, contents)

			rr := s.do(http.MethodPost, tc.path, tc.form)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			b := body(rr)
			if !strings.Contains(b, `class="error">Wrong password</p>`) {
				t.Fatalf("expected wrong password error, got %q", b)
			}
			if strings.Contains(b, `id="log-content"`) {
				t.Fatalf("expected no log content")
			}
			if got := s.logFile(t); got != contents {
				t.Fatalf("log changed: %q", got)
			}
		})
	}
}

func TestClearLog(t *testing.T) {
	s := newTestServer(t, "one\ntwo\n")

	for i := 0; i < 2; i++ {
		rr := s.do(http.MethodPost, "/delete-log-file", url.Values{"admin_pass": {testAdminPass}})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(body(rr), `class="success">All logs cleared</p>`) {
			t.Fatalf("expected success message")
		}
		if got := s.logFile(t); got != "" {
			t.Fatalf("expected empty log, got %q", got)
		}
	}

	rr := s.do(http.MethodPost, "/view-log", url.Values{"admin_pass": {testAdminPass}})
	if strings.Contains(body(rr), `id="log-content"`) {
		t.Fatalf("expected no content block for empty log")
	}
}

func TestClearLog_KeepsSessionTable(t *testing.T) {
	s := newTestServer(t, "")

	s.do(http.MethodPost, "/send-sms", url.Values{"to": {"+1"}, "message": {"keep"}})
	rr := s.do(http.MethodPost, "/delete-log-file", url.Values{"admin_pass": {testAdminPass}})

	if !strings.Contains(body(rr), "<td>keep</td>") {
		t.Fatalf("expected session table to survive clearing the log file")
	}
}

func TestDeleteLine_EndToEnd(t *testing.T) {
	s := newTestServer(t, "line 1\nline 2\nline 3\n")

	rr := s.do(http.MethodPost, "/delete-line", url.Values{"admin_pass": {testAdminPass}, "line_number": {"2"}})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(body(rr), `class="success">Line 2 deleted</p>`) {
		t.Fatalf("expected success message naming line 2, got %q", body(rr))
	}
	if got := s.logFile(t); got != "line 1\nline 3\n" {
		t.Fatalf("unexpected log after delete: %q", got)
	}
}

func TestDeleteLine_InvalidInput(t *testing.T) {
	const contents = "a\nb\nc\n"

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"zero", "0", `class="error">Invalid line number</p>`},
		{"past end", "4", `class="error">Invalid line number</p>`},
		{"non numeric", "abc", `class="error">Error: line number "abc" is not an integer`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, contents)

			rr := s.do(http.MethodPost, "/delete-line", url.Values{"admin_pass": {testAdminPass}, "line_number": {tc.raw}})

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			if !strings.Contains(body(rr), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, body(rr))
			}
			if got := s.logFile(t); got != contents {
				t.Fatalf("log changed: %q", got)
			}
		})
	}
}

func TestViewLog(t *testing.T) {
	t.Run("contents", func(t *testing.T) {
		s := newTestServer(t, "2026-01-01 00:00:00 | TO: +1 | MESSAGE: a | STATUS: ✅ Sent\n")

		rr := s.do(http.MethodPost, "/view-log", url.Values{"admin_pass": {testAdminPass}})

		b := body(rr)
		if !strings.Contains(b, `class="success">Log file loaded</p>`) {
			t.Fatalf("expected success message")
		}
		if !strings.Contains(b, "TO: +1 | MESSAGE: a | STATUS: ✅ Sent") {
			t.Fatalf("expected raw log content, got %q", b)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		s := newTestServer(t, "")

		rr := s.do(http.MethodPost, "/view-log", url.Values{"admin_pass": {testAdminPass}})

		if !strings.Contains(body(rr), ">Log file not found.</pre>") {
			t.Fatalf("expected placeholder, got %q", body(rr))
		}
	})
}

func TestStorageFaultIs500(t *testing.T) {
	// A directory in place of the log file makes every file operation fail.
	s := newTestServerAt(t, t.TempDir())

	rr := s.do(http.MethodPost, "/send-sms", url.Values{"to": {"+1"}, "message": {"hi"}})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("send: expected 500, got %d", rr.Code)
	}

	rr = s.do(http.MethodPost, "/view-log", url.Values{"admin_pass": {testAdminPass}})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("view: expected 500, got %d", rr.Code)
	}
}
