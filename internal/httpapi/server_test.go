package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"serbod/internal/supervisor"
	"serbod/pkg/types"
)

type mockService struct {
	createID   string
	createErr  error
	startPort  int
	startErr   error
	stopErr    error
	deleteErr  error
	versionErr error
	sendErr    error
	console    []string
	consoleErr error
	versions   []types.Version
	status     types.StatusResponse
	ready      bool

	lastID      string
	lastVersion string
	lastMsg     string
	lastOffset  int
	lastPort    int
}

func (m *mockService) Create(id, version string) (string, error) {
	m.lastID, m.lastVersion = id, version
	return m.createID, m.createErr
}
func (m *mockService) Start(id string, port int) (int, error) {
	m.lastID, m.lastPort = id, port
	return m.startPort, m.startErr
}
func (m *mockService) Stop(id string) error { m.lastID = id; return m.stopErr }
func (m *mockService) Delete(id string) error { m.lastID = id; return m.deleteErr }
func (m *mockService) ChangeVersion(id, version string) error {
	m.lastID, m.lastVersion = id, version
	return m.versionErr
}
func (m *mockService) Send(id, msg string) error { m.lastID, m.lastMsg = id, msg; return m.sendErr }
func (m *mockService) Console(id string, offset int) ([]string, error) {
	m.lastID, m.lastOffset = id, offset
	return m.console, m.consoleErr
}
func (m *mockService) Versions() []types.Version { return m.versions }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool { return m.ready }

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateReturnsID(t *testing.T) {
	svc := &mockService{createID: "abc-123"}
	r := NewMux(svc)
	w := postForm(t, r, "/create", url.Values{"version": {"1.16.1"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Body.String() != "abc-123" {
		t.Fatalf("body=%q", w.Body.String())
	}
	if svc.lastVersion != "1.16.1" {
		t.Fatalf("version=%q", svc.lastVersion)
	}
}

func TestCreateFailureCode(t *testing.T) {
	svc := &mockService{createErr: supervisor.ErrVersionUnknown("9.9.9")}
	r := NewMux(svc)
	w := postForm(t, r, "/create", url.Values{"version": {"9.9.9"}})
	if w.Code != http.StatusOK || w.Body.String() != "-1" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestStartReturnsPort(t *testing.T) {
	svc := &mockService{startPort: 25565}
	r := NewMux(svc)
	w := postForm(t, r, "/start", url.Values{"target_id": {"abc"}})
	if w.Body.String() != "25565" {
		t.Fatalf("body=%q", w.Body.String())
	}
	if svc.lastID != "abc" || svc.lastPort != 0 {
		t.Fatalf("id=%q port=%d", svc.lastID, svc.lastPort)
	}
}

func TestStartExplicitPort(t *testing.T) {
	svc := &mockService{startPort: 40565}
	r := NewMux(svc)
	w := postForm(t, r, "/start", url.Values{"target_id": {"abc"}, "port": {"40565"}})
	if w.Body.String() != "40565" {
		t.Fatalf("body=%q", w.Body.String())
	}
	if svc.lastPort != 40565 {
		t.Fatalf("port=%d", svc.lastPort)
	}
}

func TestStartAlreadyOnlineAnswersZero(t *testing.T) {
	svc := &mockService{startErr: supervisor.ErrAlreadyOnline("abc")}
	r := NewMux(svc)
	w := postForm(t, r, "/start", url.Values{"target_id": {"abc"}})
	if w.Body.String() != "0" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestStartBadPortForm(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postForm(t, r, "/start", url.Values{"target_id": {"abc"}, "port": {"not-a-port"}})
	if w.Body.String() != "-1" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestStopDeleteVersionCodes(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	for _, path := range []string{"/stop", "/delete"} {
		w := postForm(t, r, path, url.Values{"target_id": {"abc"}})
		if w.Body.String() != "1" {
			t.Fatalf("%s body=%q", path, w.Body.String())
		}
	}
	w := postForm(t, r, "/version", url.Values{"target_id": {"abc"}, "target_version": {"1.15.2"}})
	if w.Body.String() != "1" {
		t.Fatalf("/version body=%q", w.Body.String())
	}
	if svc.lastVersion != "1.15.2" {
		t.Fatalf("version=%q", svc.lastVersion)
	}

	svc.stopErr = supervisor.ErrOffline("abc")
	w = postForm(t, r, "/stop", url.Values{"target_id": {"abc"}})
	if w.Body.String() != "-1" {
		t.Fatalf("/stop body=%q", w.Body.String())
	}
}

func TestWriteConsole(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postForm(t, r, "/writeConsole", url.Values{"target_id": {"abc"}, "msg": {"say hi"}})
	if w.Body.String() != "1" {
		t.Fatalf("body=%q", w.Body.String())
	}
	if svc.lastMsg != "say hi" {
		t.Fatalf("msg=%q", svc.lastMsg)
	}
}

func TestWriteConsoleEmptyMessage(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postForm(t, r, "/writeConsole", url.Values{"target_id": {"abc"}, "msg": {"   "}})
	if w.Body.String() != "-1" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestGetConsoleReturnsLineArray(t *testing.T) {
	svc := &mockService{console: []string{"one", "two"}}
	r := NewMux(svc)
	w := postForm(t, r, "/getConsole", url.Values{"target_id": {"abc"}, "start_line": {"5"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var lines []string
	if err := json.Unmarshal(w.Body.Bytes(), &lines); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" {
		t.Fatalf("lines=%v", lines)
	}
	if svc.lastOffset != 5 {
		t.Fatalf("offset=%d", svc.lastOffset)
	}
}

func TestGetConsoleEmptyIsArrayNotNull(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postForm(t, r, "/getConsole", url.Values{"target_id": {"abc"}})
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestGetConsoleOfflineCode(t *testing.T) {
	svc := &mockService{consoleErr: supervisor.ErrOffline("abc")}
	r := NewMux(svc)
	w := postForm(t, r, "/getConsole", url.Values{"target_id": {"abc"}})
	if w.Body.String() != "-1" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestGetConsoleBadOffset(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postForm(t, r, "/getConsole", url.Values{"target_id": {"abc"}, "start_line": {"x"}})
	if w.Body.String() != "-1" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestVersionsHandler(t *testing.T) {
	svc := &mockService{versions: []types.Version{{ID: "1.16.1"}, {ID: "1.15.2"}}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/versions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.VersionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Versions) != 2 {
		t.Fatalf("versions len=%d", len(body.Versions))
	}
}

func TestServersHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{Servers: []types.ServerStatus{{ID: "a", State: "ready"}}}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/servers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body map[string][]types.ServerStatus
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body["servers"]) != 1 || body["servers"][0].State != "ready" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{UptimeSeconds: 42}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.UptimeSeconds != 42 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthz(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	svc := &mockService{ready: true}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	svc := &mockService{ready: false}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestGenericStartErrorMapsFail(t *testing.T) {
	svc := &mockService{startErr: errors.New("boom")}
	r := NewMux(svc)
	w := postForm(t, r, "/start", url.Values{"target_id": {"abc"}})
	if w.Body.String() != "-1" {
		t.Fatalf("body=%q", w.Body.String())
	}
}
