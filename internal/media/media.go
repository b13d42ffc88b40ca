// Package media stores menu item photos in S3-compatible object storage.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrDisabled is returned by every operation when storage is not configured.
var ErrDisabled = errors.New("media storage not configured")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// PublicURL, when set, is the base URL images are served from directly.
	// Otherwise they are proxied through /media/.
	PublicURL string
}

func (c Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Store struct {
	client    s3Client
	bucket    string
	publicURL string
}

// New returns a Store. It is disabled when cfg lacks a bucket or credentials.
func New(cfg Config) *Store {
	s := &Store{bucket: cfg.Bucket, publicURL: strings.TrimRight(cfg.PublicURL, "/")}
	if cfg.complete() {
		s.client = newS3Client(cfg)
	}
	return s
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// Object is a stored photo opened for reading. The caller closes Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// ImageKey returns a fresh object key for a photo of an item.
func ImageKey(businessID, itemID int64, ext string) string {
	return fmt.Sprintf("businesses/%d/items/%d/%s%s", businessID, itemID, uuid.NewString(), ext)
}

func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (*Object, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	obj := &Object{Body: out.Body, ContentType: aws.ToString(out.ContentType), Size: aws.ToInt64(out.ContentLength)}
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	return obj, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns where visitors load the photo at key, or "" for no photo.
func (s *Store) URL(key string) string {
	if key == "" {
		return ""
	}
	if s != nil && s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return path.Join("/media", key)
}
