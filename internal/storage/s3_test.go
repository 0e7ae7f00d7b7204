package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

type stubPutAPI struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (s *stubPutAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.inputs = append(s.inputs, params)
	if s.err != nil {
		return nil, s.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	api := &stubPutAPI{}
	store := &S3Store{
		client: api,
		cfg:    S3Config{Bucket: "images", Region: "eu-west-1", ACL: "public-read"},
		logger: zerolog.Nop(),
	}

	url, err := store.Put(context.Background(), "abc.jpg", []byte("jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if url != "https://images.s3.eu-west-1.amazonaws.com/abc.jpg" {
		t.Fatalf("url = %q", url)
	}
	if len(api.inputs) != 1 {
		t.Fatalf("expected one upload, got %d", len(api.inputs))
	}
	in := api.inputs[0]
	if aws.ToString(in.Bucket) != "images" || aws.ToString(in.Key) != "abc.jpg" {
		t.Fatalf("unexpected target: %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != "image/jpeg" {
		t.Fatalf("content type = %q", aws.ToString(in.ContentType))
	}
	if string(in.ACL) != "public-read" {
		t.Fatalf("acl = %q", in.ACL)
	}
	if aws.ToInt64(in.ContentLength) != 4 {
		t.Fatalf("content length = %d", aws.ToInt64(in.ContentLength))
	}
	body, _ := io.ReadAll(in.Body)
	if !bytes.Equal(body, []byte("jpeg")) {
		t.Fatalf("body = %q", body)
	}
}

func TestS3StorePutError(t *testing.T) {
	api := &stubPutAPI{err: errors.New("access denied")}
	store := &S3Store{client: api, cfg: S3Config{Bucket: "images"}, logger: zerolog.Nop()}

	if _, err := store.Put(context.Background(), "abc.jpg", []byte("jpeg"), "image/jpeg"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestS3StoreObjectURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "public base url",
			cfg:  S3Config{Bucket: "b", PublicBaseURL: "https://cdn.example.com/img/"},
			want: "https://cdn.example.com/img/k.jpg",
		},
		{
			name: "custom endpoint virtual host",
			cfg:  S3Config{Bucket: "b", Endpoint: "oss-cn-beijing.aliyuncs.com"},
			want: "https://b.oss-cn-beijing.aliyuncs.com/k.jpg",
		},
		{
			name: "custom endpoint path style",
			cfg:  S3Config{Bucket: "b", Endpoint: "http://minio.local:9000/", UsePathStyle: true},
			want: "http://minio.local:9000/b/k.jpg",
		},
		{
			name: "regional aws",
			cfg:  S3Config{Bucket: "b", Region: "us-east-2"},
			want: "https://b.s3.us-east-2.amazonaws.com/k.jpg",
		},
		{
			name: "global aws",
			cfg:  S3Config{Bucket: "b"},
			want: "https://b.s3.amazonaws.com/k.jpg",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &S3Store{cfg: tc.cfg, endpoint: normalizeEndpoint(tc.cfg.Endpoint)}
			if got := store.objectURL("k.jpg"); got != tc.want {
				t.Fatalf("objectURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestS3StoreAgainstHTTPServer(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	var (
		calls       int
		gotPath     string
		gotType     string
		gotBody     []byte
		sawAuthSign bool
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		sawAuthSign = r.Header.Get("Authorization") != ""
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:       "images",
		Region:       "us-east-1",
		Endpoint:     ts.URL,
		AccessKey:    "AKIDEXAMPLE",
		SecretKey:    "secret",
		UsePathStyle: true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewS3Store error: %v", err)
	}

	url, err := store.Put(context.Background(), "abc.jpg", []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one request, got %d", calls)
	}
	if gotPath != "/images/abc.jpg" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotType != "image/jpeg" {
		t.Fatalf("content type = %q", gotType)
	}
	if !bytes.Contains(gotBody, []byte("jpeg-bytes")) {
		t.Fatalf("body does not carry payload: %q", gotBody)
	}
	if !sawAuthSign {
		t.Fatalf("expected signed request")
	}
	if url != ts.URL+"/images/abc.jpg" {
		t.Fatalf("url = %q", url)
	}
}

func TestNewS3StoreWarnsWhenObjectsArePrivate(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	tests := []struct {
		name     string
		acl      string
		public   string
		wantWarn bool
	}{
		{name: "no acl no public url", wantWarn: true},
		{name: "public-read acl", acl: "public-read"},
		{name: "cdn in front", public: "https://cdn.example.com"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := NewS3Store(context.Background(), S3Config{
				Bucket:        "images",
				Region:        "us-east-1",
				Endpoint:      "http://127.0.0.1:9",
				AccessKey:     "AKIDEXAMPLE",
				SecretKey:     "secret",
				ACL:           tc.acl,
				PublicBaseURL: tc.public,
			}, zerolog.New(&buf))
			if err != nil {
				t.Fatalf("NewS3Store error: %v", err)
			}
			warned := strings.Contains(buf.String(), `"level":"warn"`)
			if warned != tc.wantWarn {
				t.Fatalf("warned = %v, want %v; log: %s", warned, tc.wantWarn, buf.String())
			}
		})
	}
}
