package storage

import "testing"

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.PDF", "sessions/s1/d1.pdf"},
		{"notes.txt", "sessions/s1/d1.txt"},
		{"README", "sessions/s1/d1"},
	}
	for _, tt := range tests {
		if got := DocumentKey("s1", "d1", tt.name); got != tt.want {
			t.Errorf("DocumentKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNewS3ClientWithoutBucket(t *testing.T) {
	t.Setenv("AWS_BUCKET", "")
	client, err := NewS3Client(t.Context())
	if err != nil || client != nil {
		t.Fatalf("NewS3Client() = %v, %v; want nil, nil", client, err)
	}
}
