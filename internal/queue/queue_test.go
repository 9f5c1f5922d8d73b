package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
	loaderio "github.com/OFFIS-RIT/kgraph/backend/pkg/loader/io"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger/lexicon"

	"github.com/rabbitmq/amqp091-go"
)

type fakeAck struct {
	acked, nacked int
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error { a.acked++; return nil }
func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	return nil
}
func (a *fakeAck) Reject(tag uint64, requeue bool) error { return nil }

type published struct {
	key string
	msg amqp091.Publishing
}

type fakeChannel struct {
	out []published
	err error
}

func (c *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.out = append(c.out, published{key: key, msg: msg})
	return nil
}

func TestRetries(t *testing.T) {
	tests := []struct {
		headers amqp091.Table
		want    int
	}{
		{nil, 0},
		{amqp091.Table{"x-retries": int32(3)}, 3},
		{amqp091.Table{"x-retries": int64(7)}, 7},
		{amqp091.Table{"x-retries": 2}, 2},
		{amqp091.Table{"x-retries": "5"}, 0},
	}
	for _, tt := range tests {
		if got := Retries(tt.headers); got != tt.want {
			t.Errorf("Retries(%v) = %d, want %d", tt.headers, got, tt.want)
		}
	}
}

func TestHandleProcessingError(t *testing.T) {
	tests := []struct {
		name        string
		headers     amqp091.Table
		wantQueue   string
		wantRetries int
	}{
		{"first failure", nil, "build_queue_retry", 1},
		{"later failure", amqp091.Table{"x-retries": int64(4)}, "build_queue_retry", 5},
		{"exhausted", amqp091.Table{"x-retries": int32(MaxRetries)}, "build_queue_dlq", MaxRetries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			ch := &fakeChannel{}
			msg := amqp091.Delivery{Acknowledger: ack, Headers: tt.headers, Body: []byte("{}")}

			HandleProcessingError(ch, msg, BuildQueue)

			if len(ch.out) != 1 {
				t.Fatalf("expected 1 publish, got %d", len(ch.out))
			}
			if ch.out[0].key != tt.wantQueue {
				t.Errorf("published to %q, want %q", ch.out[0].key, tt.wantQueue)
			}
			if got := Retries(ch.out[0].msg.Headers); got != tt.wantRetries {
				t.Errorf("x-retries = %d, want %d", got, tt.wantRetries)
			}
			if ack.acked != 1 || ack.nacked != 0 {
				t.Errorf("acked=%d nacked=%d", ack.acked, ack.nacked)
			}
		})
	}
}

func TestHandleProcessingError_PublishFailureRequeues(t *testing.T) {
	ack := &fakeAck{}
	ch := &fakeChannel{err: errors.New("closed")}
	HandleProcessingError(ch, amqp091.Delivery{Acknowledger: ack}, BuildQueue)
	if ack.acked != 0 || ack.nacked != 1 {
		t.Fatalf("acked=%d nacked=%d, want 0/1", ack.acked, ack.nacked)
	}
}

func TestBuildFile(t *testing.T) {
	objects := loaderio.NewBytesGraphFileLoader("d1", []byte("text"))
	deps := BuildDeps{Objects: objects}

	tests := []struct {
		name    string
		msg     BuildJobMsg
		want    loader.GraphFileType
		wantErr bool
	}{
		{"inline text", BuildJobMsg{DocumentID: "d1", Source: SourceText, Text: "hi"}, loader.GraphFileTypeText, false},
		{"object pdf", BuildJobMsg{DocumentID: "d1", Source: SourceObject, ObjectKey: "sessions/s/d1.PDF"}, loader.GraphFileTypePDF, false},
		{"object text", BuildJobMsg{DocumentID: "d1", Source: SourceObject, ObjectKey: "sessions/s/d1.txt"}, loader.GraphFileTypeText, false},
		{"url without web loader", BuildJobMsg{DocumentID: "d1", Source: SourceURL, URL: "https://example.com"}, "", true},
		{"unknown source", BuildJobMsg{DocumentID: "d1", Source: "ftp"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := BuildFile(tt.msg, deps)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidJob) {
					t.Fatalf("BuildFile() error = %v, want ErrInvalidJob", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildFile() error = %v", err)
			}
			if f.FileType != tt.want {
				t.Errorf("FileType = %q, want %q", f.FileType, tt.want)
			}
		})
	}
}

type recordingStore struct {
	mu      sync.Mutex
	batches []common.Batch
}

func (s *recordingStore) SaveBatch(ctx context.Context, b common.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b)
	return nil
}
func (s *recordingStore) GetVisualization(ctx context.Context, id string) (*common.Visualization, error) {
	return nil, nil
}
func (s *recordingStore) GetInsights(ctx context.Context, id string) (*common.Insights, error) {
	return nil, nil
}
func (s *recordingStore) ClearSession(ctx context.Context, id string) error { return nil }
func (s *recordingStore) Close(ctx context.Context) error                   { return nil }

func TestProcessBuildMessage(t *testing.T) {
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{Tagger: lexicon.New(nil)})
	if err != nil {
		t.Fatalf("NewGraphClient() error = %v", err)
	}
	st := &recordingStore{}
	deps := BuildDeps{Graph: client, Store: st}

	body, _ := json.Marshal(BuildJobMsg{
		JobID:      "j1",
		SessionID:  "s1",
		DocumentID: "d1",
		Source:     SourceText,
		Text:       "Steve Jobs founded Apple in 1976.",
	})
	if err := ProcessBuildMessage(context.Background(), deps, body); err != nil {
		t.Fatalf("ProcessBuildMessage() error = %v", err)
	}
	if len(st.batches) != 1 {
		t.Fatalf("expected 1 saved batch, got %d", len(st.batches))
	}
	if b := st.batches[0]; b.SessionID != "s1" || b.DocumentID != "d1" || len(b.Entities) == 0 {
		t.Errorf("batch = %+v", b)
	}

	for _, bad := range [][]byte{[]byte("not json"), []byte(`{"session_id":"s1"}`)} {
		if err := ProcessBuildMessage(context.Background(), deps, bad); !errors.Is(err, ErrInvalidJob) {
			t.Errorf("ProcessBuildMessage(%s) error = %v, want ErrInvalidJob", bad, err)
		}
	}
}
