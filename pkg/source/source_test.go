package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/hxstate/pkg/dom"
)

const page = `<article hx-state><p id="n" hx-bind="innerText=count:Number">5</p></article>`

type fakeS3 struct {
	objects map[string]string
	bucket  string
	key     string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	body, ok := f.objects[f.bucket+"/"+f.key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &Loader{}
	for _, uri := range []string{path, "file://" + path} {
		doc, err := l.Load(context.Background(), uri)
		if err != nil {
			t.Fatalf("Load(%q): %v", uri, err)
		}
		if dom.ByID(doc, "n") == nil {
			t.Errorf("Load(%q): expected #n in document", uri)
		}
	}
}

func TestLoadStdin(t *testing.T) {
	l := &Loader{Stdin: strings.NewReader(page)}
	doc, err := l.Load(context.Background(), Stdin)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(dom.WithAttr(doc, "hx-state")); got != 1 {
		t.Errorf("expected 1 state owner, got %d", got)
	}
}

func TestLoadS3(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"pages/site/counter.html": page}}
	l := &Loader{S3: fake}

	doc, err := l.Load(context.Background(), "s3://pages/site/counter.html")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fake.bucket != "pages" || fake.key != "site/counter.html" {
		t.Errorf("expected pages site/counter.html, got %s %s", fake.bucket, fake.key)
	}
	if dom.ByID(doc, "n") == nil {
		t.Error("expected #n in document")
	}

	if _, err := l.Load(context.Background(), "s3://pages/missing.html"); err == nil || !strings.Contains(err.Error(), "NoSuchKey") {
		t.Errorf("expected NoSuchKey error, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	l := &Loader{}
	if _, err := l.Load(context.Background(), "s3://b/k"); !errors.Is(err, ErrNoS3Client) {
		t.Errorf("expected ErrNoS3Client, got %v", err)
	}
	if _, err := l.Load(context.Background(), "ftp://host/x"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
	if _, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "none.html")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}

	small := &Loader{Stdin: strings.NewReader(page), MaxBytes: 10}
	if _, err := small.Read(context.Background(), Stdin); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://b/k.html", "b", "k.html", false},
		{"s3://b/dir/k.html", "b", "dir/k.html", false},
		{"s3://b/", "", "", true},
		{"s3:///k", "", "", true},
		{"http://b/k", "", "", true},
	}
	for _, tt := range tests {
		bucket, key, err := ParseS3URI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseS3URI(%q): unexpected error state %v", tt.uri, err)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URI(%q): expected %s %s, got %s %s", tt.uri, tt.bucket, tt.key, bucket, key)
		}
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := (envCredentials{}).Retrieve(context.Background()); !errors.Is(err, errNoCredentials) {
		t.Errorf("expected errNoCredentials, got %v", err)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := (envCredentials{}).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if creds.AccessKeyID != "id" || creds.SecretAccessKey != "secret" {
		t.Errorf("unexpected credentials %+v", creds)
	}

	if c := NewS3Client(S3Config{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true}); c.Options().Region != "eu-west-1" {
		t.Errorf("expected region eu-west-1, got %s", c.Options().Region)
	}
}
