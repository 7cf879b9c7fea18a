package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"resume-tailor/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "resume_fixed.json", want: "resume_fixed.json"},
		{name: "simple prefix", prefix: "root", key: "resume_fixed.json", want: "root/resume_fixed.json"},
		{name: "prefix trailing slash", prefix: "root/", key: "resume_fixed.json", want: "root/resume_fixed.json"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/resume_fixed.json", want: "root/resume_fixed.json"},
		{name: "nested prefix", prefix: "root/sub", key: "runs/tailored.json", want: "root/sub/runs/tailored.json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewWithClientRequiresBucket(t *testing.T) {
	if _, err := NewWithClient(s3.New(s3.Options{Region: "us-east-1"}), " ", "", ""); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}

// fakeS3 serves path-style PUT/GET for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers map[string]http.Header
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.headers[r.URL.Path] = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeStore(t *testing.T, kmsKeyID string) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, headers: map[string]http.Header{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),

		// Keep request bodies plain so the fake can store them verbatim.
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	store, err := NewWithClient(client, "artifacts", "tailor/", kmsKeyID)
	if err != nil {
		t.Fatalf("NewWithClient: %v", err)
	}
	return store, fake
}

func TestPutAndOpenRoundTrip(t *testing.T) {
	store, fake := newFakeStore(t, "kms-123")
	ctx := context.Background()

	if err := object.WriteBytes(ctx, store, "resume_fixed.json", "application/json", []byte(`{"Summary":"x"}`)); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	got, err := object.ReadBytes(ctx, store, "resume_fixed.json")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if string(got) != `{"Summary":"x"}` {
		t.Fatalf("unexpected body %q", got)
	}

	hdr := fake.headers["/artifacts/tailor/resume_fixed.json"]
	if hdr == nil {
		t.Fatalf("expected object at prefixed key, have %v", fake.objects)
	}
	if hdr.Get("X-Amz-Server-Side-Encryption") != "aws:kms" || hdr.Get("X-Amz-Server-Side-Encryption-Aws-Kms-Key-Id") != "kms-123" {
		t.Fatalf("expected kms encryption headers, got %v", hdr)
	}
	if !strings.HasPrefix(hdr.Get("Content-Type"), "application/json") {
		t.Fatalf("unexpected content type %q", hdr.Get("Content-Type"))
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store, _ := newFakeStore(t, "")
	_, err := store.Open(context.Background(), "tailored_resume.json")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
