package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	healthuc "github.com/kailas-cloud/mindrecall/internal/usecase/health"
	"github.com/kailas-cloud/mindrecall/internal/usecase/retrieval"
)

// --- Fakes ---

type fakeMoods struct {
	logged    []string
	logErr    error
	list      []domain.Record
	listErr   error
	listLimit int
}

func (f *fakeMoods) Log(_ context.Context, userID, level, note string) (domain.Record, error) {
	if f.logErr != nil {
		return domain.Record{}, f.logErr
	}
	f.logged = append(f.logged, userID+"/"+level+"/"+note)
	return domain.Record{
		ID:        "rec-1",
		UserID:    userID,
		Label:     level,
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}, nil
}

func (f *fakeMoods) List(_ context.Context, _ string, limit int) ([]domain.Record, error) {
	f.listLimit = limit
	return f.list, f.listErr
}

type fakeRetriever struct {
	bundle retrieval.Bundle
	userID string
	query  string
}

func (f *fakeRetriever) Retrieve(_ context.Context, userID, query string) retrieval.Bundle {
	f.userID, f.query = userID, query
	return f.bundle
}

type fakeChat struct {
	reply string
	err   error
}

func (f *fakeChat) Reply(context.Context, string, string) (string, error) { return f.reply, f.err }

type fakeHealth struct {
	report healthuc.Report
}

func (f *fakeHealth) Check(context.Context) healthuc.Report { return f.report }

type fixture struct {
	moods     *fakeMoods
	retriever *fakeRetriever
	chat      *fakeChat
	health    *fakeHealth
	handler   http.Handler
}

func newFixture(apiKeys ...string) *fixture {
	f := &fixture{
		moods:     &fakeMoods{},
		retriever: &fakeRetriever{},
		chat:      &fakeChat{reply: "hello"},
		health: &fakeHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
	f.handler = NewServer(f.moods, f.retriever, f.chat, f.health, nil).Router(apiKeys)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Tests ---

func TestLogMood_Created(t *testing.T) {
	f := newFixture()
	rr := f.do("POST", "/v1/users/42/moods", `{"level":"anxious","note":"exam"}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body)
	}
	resp := decode[LogMoodResponse](t, rr)
	if resp.ID != "rec-1" || resp.CreatedAt.IsZero() {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(f.moods.logged) != 1 || f.moods.logged[0] != "42/anxious/exam" {
		t.Errorf("logged = %q", f.moods.logged)
	}
}

func TestLogMood_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		logErr   error
		wantCode int
		wantErr  ErrorCode
	}{
		{"malformed body", `{"level":`, nil, http.StatusBadRequest, CodeBadRequest},
		{"validation", `{"level":""}`, domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed},
		{"storage failure", `{"level":"sad"}`, errors.New("redis: connection refused"),
			http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.moods.logErr = tt.logErr
			rr := f.do("POST", "/v1/users/42/moods", tt.body)

			if rr.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", rr.Code, tt.wantCode)
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tt.wantErr {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantErr)
			}
			if strings.Contains(resp.Message, "redis") {
				t.Errorf("internal details leaked: %q", resp.Message)
			}
		})
	}
}

func TestListMoods(t *testing.T) {
	f := newFixture()
	f.moods.list = []domain.Record{
		{ID: "b", Label: "calm", Note: "tea"},
		{ID: "a", Label: "sad"},
	}
	rr := f.do("GET", "/v1/users/42/moods?limit=2", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	resp := decode[MoodListResponse](t, rr)
	if len(resp.Items) != 2 || resp.Items[0].ID != "b" || resp.Items[0].Level != "calm" {
		t.Errorf("unexpected items %+v", resp.Items)
	}
	if f.moods.listLimit != 2 {
		t.Errorf("limit = %d", f.moods.listLimit)
	}
}

func TestListMoods_InvalidLimit(t *testing.T) {
	f := newFixture()
	for _, q := range []string{"abc", "0", "-3"} {
		rr := f.do("GET", "/v1/users/42/moods?limit="+q, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: got %d", q, rr.Code)
		}
	}
}

func TestRetrieveContext(t *testing.T) {
	f := newFixture()
	f.retriever.bundle = retrieval.Bundle{
		Passages: []string{"anxious | work deadline"},
		Lexical: domain.Succeeded(domain.SourceLexical, []domain.Document{
			{ID: "mood:r3", Text: "anxious | work deadline", Score: 1.2},
		}),
		Embedding: domain.Succeeded(domain.SourceEmbedding, nil),
		Vector:    domain.Failed(domain.SourceVector, domain.ErrIndexUnconfigured),
	}

	rr := f.do("POST", "/v1/users/42/context", `{"query":"anxious"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if f.retriever.userID != "42" || f.retriever.query != "anxious" {
		t.Errorf("retriever got %q/%q", f.retriever.userID, f.retriever.query)
	}

	resp := decode[ContextResponse](t, rr)
	if len(resp.Passages) != 1 || resp.Passages[0] != "anxious | work deadline" {
		t.Errorf("passages = %q", resp.Passages)
	}
	if len(resp.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(resp.Branches))
	}
	if resp.Branches[0].Source != "lexical" || len(resp.Branches[0].Documents) != 1 {
		t.Errorf("lexical branch = %+v", resp.Branches[0])
	}
	if resp.Branches[2].DegradedReason != domain.ErrIndexUnconfigured.Error() {
		t.Errorf("vector reason = %q", resp.Branches[2].DegradedReason)
	}
}

func TestRetrieveContext_EmptyBundleEncodesEmptyList(t *testing.T) {
	f := newFixture()
	rr := f.do("POST", "/v1/users/42/context", `{"query":""}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"passages":[]`) {
		t.Errorf("expected empty passages list, got %s", rr.Body)
	}
}

func TestChat(t *testing.T) {
	f := newFixture()
	rr := f.do("POST", "/v1/users/42/chat", `{"message":"hi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if resp := decode[ChatResponse](t, rr); resp.Response != "hello" {
		t.Errorf("response = %q", resp.Response)
	}

	f.chat.err = domain.ErrInvalidInput
	if rr := f.do("POST", "/v1/users/42/chat", `{"message":""}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty message: got %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		want   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		f := newFixture("secret")
		f.health.report.Status = tt.status

		rr := f.do("GET", "/health", "")
		if rr.Code != tt.want {
			t.Errorf("%s: got %d, want %d", tt.status, rr.Code, tt.want)
		}
		resp := decode[HealthResponse](t, rr)
		if resp.Status != string(tt.status) || resp.Checks["database"] != "ok" {
			t.Errorf("unexpected body %+v", resp)
		}
	}
}

func TestRouter_AuthAndRequestID(t *testing.T) {
	f := newFixture("secret")

	if rr := f.do("GET", "/v1/users/42/moods", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: got %d", rr.Code)
	}

	req := httptest.NewRequest("GET", "/v1/users/42/moods", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("authenticated: got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRouter_NotFound(t *testing.T) {
	f := newFixture()
	rr := f.do("GET", "/v1/unknown", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeNotFound {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeInternalError {
		t.Errorf("code = %s", resp.Code)
	}
}
