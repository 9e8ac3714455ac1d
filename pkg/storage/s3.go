package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage reads attachment objects from S3-compatible object storage.
type S3Storage struct {
	client *s3.Client
	cfg    Config
}

// New creates a new S3Storage with the given configuration.
func New(cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3Storage{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// Get retrieves an object from S3.
// Objects larger than the configured MaxObjectSize are rejected.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}

	output, err := s.client.GetObject(ctx, input)
	if err != nil {
		return nil, wrapS3Error(err, ErrDownloadFailed)
	}

	if output.ContentLength != nil && *output.ContentLength > s.cfg.MaxObjectSize {
		_ = output.Body.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrObjectTooLarge, key, *output.ContentLength)
	}

	return &sizeGuard{body: output.Body, remaining: s.cfg.MaxObjectSize, key: key}, nil
}

// sizeGuard fails reads once more than remaining bytes were delivered.
// It covers responses that carry no Content-Length.
type sizeGuard struct {
	body      io.ReadCloser
	key       string
	remaining int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	n, err := g.body.Read(p)
	g.remaining -= int64(n)
	if g.remaining < 0 {
		return n, fmt.Errorf("%w: %s", ErrObjectTooLarge, g.key)
	}
	return n, err
}

func (g *sizeGuard) Close() error {
	return g.body.Close()
}

// Open resolves an "s3://" reference and retrieves the object.
// It satisfies the attachment opener interface of the mailer package.
func (s *S3Storage) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	key, err := s.KeyFromRef(ref)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, key)
}

// KeyFromRef extracts the object key from "s3://key" or "s3://bucket/key".
// The bucket segment is stripped only when it names the configured bucket.
func (s *S3Storage) KeyFromRef(ref string) (string, error) {
	rest, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q lacks %s prefix", ErrInvalidRef, ref, RefPrefix)
	}

	if bucket, key, found := strings.Cut(rest, "/"); found && bucket == s.cfg.Bucket {
		rest = key
	}

	rest = strings.TrimLeft(rest, "/")
	if rest == "" || strings.Contains(rest, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return rest, nil
}

// Ensure S3Storage implements Reader.
var _ Reader = (*S3Storage)(nil)
