package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/OFFIS-RIT/kgraph/backend/internal/queue"
	mid "github.com/OFFIS-RIT/kgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger/lexicon"

	"github.com/labstack/echo/v4"
)

type memoryStore struct {
	mu      sync.Mutex
	batches map[string][]common.Batch
	cleared []string
}

func (s *memoryStore) SaveBatch(ctx context.Context, b common.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batches == nil {
		s.batches = map[string][]common.Batch{}
	}
	s.batches[b.SessionID] = append(s.batches[b.SessionID], b)
	return nil
}

func (s *memoryStore) GetVisualization(ctx context.Context, id string) (*common.Visualization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches[id]) == 0 {
		return nil, store.ErrSessionNotFound
	}
	vis := &common.Visualization{}
	for _, b := range s.batches[id] {
		for _, e := range b.Entities {
			vis.Nodes = append(vis.Nodes, store.NewNode(e.Key(), e.Text))
		}
	}
	return vis, nil
}

func (s *memoryStore) GetInsights(ctx context.Context, id string) (*common.Insights, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches[id]) == 0 {
		return nil, store.ErrSessionNotFound
	}
	n := 0
	for _, b := range s.batches[id] {
		n += len(b.Entities)
	}
	return &common.Insights{TotalEntities: n, EntityTypes: map[string]int{}}, nil
}

func (s *memoryStore) ClearSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, id)
	s.cleared = append(s.cleared, id)
	return nil
}

func (s *memoryStore) Close(ctx context.Context) error { return nil }

type fakePublisher struct {
	queue string
	body  []byte
}

func (p *fakePublisher) Publish(ctx context.Context, queueName string, data []byte) error {
	p.queue = queueName
	p.body = data
	return nil
}

func newTestServer(t *testing.T, app *mid.App) *echo.Echo {
	t.Helper()
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{Tagger: lexicon.New(nil)})
	if err != nil {
		t.Fatalf("NewGraphClient() error = %v", err)
	}
	app.Graph = client
	if app.Store == nil {
		app.Store = &memoryStore{}
	}
	return New(app, nil, "1M")
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, &mid.App{})
	rec := doJSON(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestBuildGraph(t *testing.T) {
	st := &memoryStore{}
	e := newTestServer(t, &mid.App{Store: st})

	rec := doJSON(e, http.MethodPost, "/api/graph/build", `{"text":"Steve Jobs founded Apple in 1976."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		SessionID     string                `json:"session_id"`
		DocumentID    string                `json:"document_id"`
		Entities      []common.Entity       `json:"entities"`
		Relationships []common.Relationship `json:"relationships"`
		Message       string                `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !util.IsID(res.SessionID) || !util.IsID(res.DocumentID) {
		t.Errorf("ids = %q, %q", res.SessionID, res.DocumentID)
	}
	if len(res.Entities) == 0 || res.Message == "" {
		t.Errorf("response = %+v", res)
	}
	if len(st.batches[res.SessionID]) != 1 {
		t.Errorf("expected one saved batch for %s", res.SessionID)
	}

	rec = doJSON(e, http.MethodGet, "/api/graph/"+res.SessionID+"/visualize", "")
	if rec.Code != http.StatusOK {
		t.Errorf("visualize status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/graph/"+res.SessionID+"/insights", "")
	if rec.Code != http.StatusOK {
		t.Errorf("insights status = %d", rec.Code)
	}
}

func TestBuildGraph_BadRequests(t *testing.T) {
	e := newTestServer(t, &mid.App{MaxTextChars: 10})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing text", `{}`, http.StatusBadRequest},
		{"malformed", `{"text":`, http.StatusBadRequest},
		{"invalid session", `{"text":"Apple","session_id":"../etc"}`, http.StatusBadRequest},
		{"too long", `{"text":"Apple bought Beats for $3 billion."}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/graph/build", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestUploadGraph(t *testing.T) {
	e := newTestServer(t, &mid.App{})

	upload := func(name string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		fw, _ := w.CreateFormFile("file", name)
		fw.Write(content)
		w.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/graph/upload", &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	if rec := upload("notes.txt", []byte("Tim Cook is the CEO of Apple.")); rec.Code != http.StatusOK {
		t.Errorf("text upload status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := upload("blob.bin", []byte{0xff, 0xfe, 0x00, 0x81}); rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("binary upload status = %d", rec.Code)
	}
	if rec := upload("broken.pdf", []byte("%PDF-1.4 nothing here")); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("broken pdf status = %d", rec.Code)
	}
}

func TestURLGraph_NoWebLoader(t *testing.T) {
	e := newTestServer(t, &mid.App{})
	rec := doJSON(e, http.MethodPost, "/api/graph/url", `{"url":"https://example.com/a"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/api/graph/url", `{"url":"not a url"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateJob(t *testing.T) {
	e := newTestServer(t, &mid.App{})
	if rec := doJSON(e, http.MethodPost, "/api/graph/jobs", `{"text":"Apple"}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("without queue status = %d", rec.Code)
	}

	pub := &fakePublisher{}
	e = newTestServer(t, &mid.App{Queue: pub})

	if rec := doJSON(e, http.MethodPost, "/api/graph/jobs", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty job status = %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodPost, "/api/graph/jobs", `{"text":"a","url":"https://example.com"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("text and url status = %d", rec.Code)
	}

	rec := doJSON(e, http.MethodPost, "/api/graph/jobs", `{"text":"Apple acquired Beats."}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if pub.queue != queue.BuildQueue {
		t.Errorf("published to %q", pub.queue)
	}
	var msg queue.BuildJobMsg
	if err := json.Unmarshal(pub.body, &msg); err != nil {
		t.Fatalf("invalid job message: %v", err)
	}
	if msg.Source != queue.SourceText || msg.Text != "Apple acquired Beats." || !util.IsID(msg.SessionID) {
		t.Errorf("job = %+v", msg)
	}
}

func TestSessionRoutes(t *testing.T) {
	st := &memoryStore{}
	e := newTestServer(t, &mid.App{Store: st})
	unknown := util.NewID()

	if rec := doJSON(e, http.MethodGet, "/api/graph/"+unknown+"/visualize", ""); rec.Code != http.StatusNotFound {
		t.Errorf("visualize unknown status = %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/api/graph/"+unknown+"/insights", ""); rec.Code != http.StatusNotFound {
		t.Errorf("insights unknown status = %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/api/graph/"+unknown+"/similar?q=apple", ""); rec.Code != http.StatusNotImplemented {
		t.Errorf("similar status = %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/api/graph/short/visualize", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid session status = %d", rec.Code)
	}

	if rec := doJSON(e, http.MethodDelete, "/api/graph/"+unknown, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if len(st.cleared) != 1 || st.cleared[0] != unknown {
		t.Errorf("cleared = %v", st.cleared)
	}
}
