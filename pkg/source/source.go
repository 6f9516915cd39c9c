package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/hxstate/pkg/dom"
)

// Stdin is the URI that reads from the loader's standard input.
const Stdin = "-"

// DefaultMaxBytes caps the size of a loaded document.
const DefaultMaxBytes = 8 << 20

var (
	// ErrUnsupportedScheme is returned for URIs with a scheme other than
	// file or s3.
	ErrUnsupportedScheme = errors.New("source: unsupported scheme")

	// ErrNoS3Client is returned when an s3:// URI is loaded without a client.
	ErrNoS3Client = errors.New("source: no S3 client configured")

	// ErrTooLarge is returned when a document exceeds the size limit.
	ErrTooLarge = errors.New("source: document too large")
)

// ObjectGetter is the subset of *s3.Client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader opens HTML documents from local files, standard input or S3.
type Loader struct {
	// S3 serves s3://bucket/key URIs. Nil disables them.
	S3 ObjectGetter

	// Stdin is read for the "-" URI. Defaults to os.Stdin.
	Stdin io.Reader

	// MaxBytes caps the document size. Defaults to DefaultMaxBytes.
	MaxBytes int64
}

// Open returns a reader over the document named by uri.
func (l *Loader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if uri == Stdin {
		in := l.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.NopCloser(in), nil
	}

	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return os.Open(uri)
	}
	switch scheme {
	case "file":
		return os.Open(rest)
	case "s3":
		return l.openS3(ctx, uri)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

func (l *Loader) openS3(ctx context.Context, uri string) (io.ReadCloser, error) {
	if l.S3 == nil {
		return nil, ErrNoS3Client
	}
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	out, err := l.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("source: get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// Read returns the document bytes, enforcing MaxBytes.
func (l *Loader) Read(ctx context.Context, uri string) ([]byte, error) {
	rc, err := l.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", uri, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, uri, limit)
	}
	return data, nil
}

// Load reads and parses the document named by uri.
func (l *Loader) Load(ctx context.Context, uri string) (*dom.Element, error) {
	data, err := l.Read(ctx, uri)
	if err != nil {
		return nil, err
	}
	return dom.Parse(bytes.NewReader(data))
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("source: parse %q: %w", uri, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("source: %q: expected s3://bucket/key", uri)
	}
	return u.Host, key, nil
}
