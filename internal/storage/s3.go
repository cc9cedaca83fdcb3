package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/kiranshivaraju/hireflow/internal/config"
)

// S3Store implements FileStore on an S3-compatible bucket.
type S3Store struct {
	client        *s3.Client
	bucket        string
	keyPrefix     string
	publicBaseURL string
}

// NewS3Store loads the default AWS credential chain and builds a store for
// cfg.Bucket. A custom endpoint switches the client to path-style addressing.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, cfg), nil
}

// NewS3StoreWithClient builds a store around an existing client.
func NewS3StoreWithClient(client *s3.Client, cfg config.StorageConfig) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		keyPrefix:     strings.Trim(cfg.KeyPrefix, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (s *S3Store) Put(ctx context.Context, name string, content []byte, contentType string) (*StoredFile, error) {
	key := s.objectKey(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object bucket:%s key:%s: %w", s.bucket, key, err)
	}

	return &StoredFile{Key: key, URL: s.urlFor(key)}, nil
}

func (s *S3Store) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	key, err := s.keyFromURL(url)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("get object bucket:%s key:%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, err := s.keyFromURL(url)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object bucket:%s key:%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3Store) objectKey(name string) string {
	name = strings.TrimLeft(name, "/")
	if s.keyPrefix == "" {
		return name
	}
	return path.Join(s.keyPrefix, name)
}

// urlFor returns the public URL when one is configured, otherwise an
// s3:// reference that only this store can resolve.
func (s *S3Store) urlFor(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return "s3://" + s.bucket + "/" + key
}

func (s *S3Store) keyFromURL(url string) (string, error) {
	for _, base := range []string{s.publicBaseURL + "/", "s3://" + s.bucket + "/"} {
		if base != "/" && strings.HasPrefix(url, base) {
			if key := strings.TrimPrefix(url, base); key != "" {
				return key, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q is not in bucket %s", ErrObjectNotFound, url, s.bucket)
}

var _ FileStore = (*S3Store)(nil)
