// Package s3 provides a core.ArtifactStore backed by Amazon S3.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/fashionagent/artifact"
	"github.com/hupe1980/fashionagent/core"
)

// Client is the subset of the S3 API the store needs. *s3.Client satisfies it.
type Client interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Config makes the bucket and object defaults explicit.
type Config struct {
	Bucket      string
	Prefix      string // optional key prefix prepended to relative keys
	ContentType string // defaults to image/jpeg
}

// Store implements core.ArtifactStore on top of S3.
type Store struct {
	client Client
	cfg    Config
}

var _ core.ArtifactStore = (*Store)(nil)

// New creates a Store. Bucket is required.
func New(client Client, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, core.Errorf("artifact.s3", core.KindConfig, "bucket is required")
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "image/jpeg"
	}
	return &Store{client: client, cfg: cfg}, nil
}

// Namespace returns s3://<bucket>.
func (s *Store) Namespace() string { return artifact.S3Scheme + s.cfg.Bucket }

// Put uploads data and returns the s3:// URI of the object.
func (s *Store) Put(ctx context.Context, location string, data []byte) (string, error) {
	bucket, key, err := s.resolve(location)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(s.cfg.ContentType),
	})
	if err != nil {
		return "", core.E("artifact.s3.put", core.KindUpstream, err)
	}

	return artifact.S3Scheme + bucket + "/" + key, nil
}

// Get downloads the object at location (s3:// URI or key relative to the bucket).
func (s *Store) Get(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := s.resolve(location)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", artifact.ErrNotFound, location)
		}
		return nil, core.E("artifact.s3.get", core.KindUpstream, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, core.E("artifact.s3.get", core.KindUpstream, err)
	}

	return data, nil
}

func (s *Store) resolve(location string) (string, string, error) {
	if strings.HasPrefix(location, artifact.S3Scheme) {
		bucket, key, err := artifact.ParseS3Location(location)
		if err != nil {
			return "", "", core.E("artifact.s3", core.KindInvalidInput, err)
		}
		return bucket, key, nil
	}
	key := strings.TrimPrefix(location, "/")
	if key == "" {
		return "", "", core.Errorf("artifact.s3", core.KindInvalidInput, "empty artifact location")
	}
	if s.cfg.Prefix != "" {
		key = artifact.Join(s.cfg.Prefix, key)
	}
	return s.cfg.Bucket, key, nil
}
