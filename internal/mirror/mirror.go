// Package mirror publishes materialized images to an S3-compatible bucket.
package mirror

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// Config describes the target bucket.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Prefix    string // object key prefix, e.g. "images"
}

// Validate reports the first missing required field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("s3 endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" || strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("s3 access key and secret key are required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	return nil
}

// bucketAPI is the subset of *minio.Client the store uses.
type bucketAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store uploads files under one bucket and prefix.
type Store struct {
	client bucketAPI
	bucket string
	region string
	prefix string
	log    *logrus.Entry

	initOnce sync.Once
	initErr  error
}

// New connects a store with static credentials.
func New(cfg Config, log *logrus.Entry) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(strings.TrimSpace(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return newStore(client, cfg, region, log), nil
}

func newStore(client bucketAPI, cfg Config, region string, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{
		client: client,
		bucket: strings.TrimSpace(cfg.Bucket),
		region: region,
		prefix: cfg.Prefix,
		log:    log,
	}
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.log.Infof("creating bucket %s", s.bucket)
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// ObjectKey joins prefix and a slash-separated relative path.
func ObjectKey(prefix, rel string) string {
	rel = strings.TrimLeft(filepath.ToSlash(rel), "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

func contentType(rel string) string {
	switch strings.ToLower(path.Ext(rel)) {
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".avif":
		return "image/avif"
	}
	return "application/octet-stream"
}

// Failure is one file that could not be published.
type Failure struct {
	Rel    string
	Reason string
}

// Report summarizes a Publish call.
type Report struct {
	Uploaded int
	Skipped  int
	Bytes    int64
	Failures []Failure
}

// Publish uploads each rel under root. Objects whose size already matches
// the local file are skipped unless force is set. Per-file errors are
// collected in the report; only bucket setup and cancellation abort.
func (s *Store) Publish(ctx context.Context, root string, rels []string, force bool) (*Report, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	rep := &Report{}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		local := filepath.Join(root, filepath.FromSlash(rel))
		key := ObjectKey(s.prefix, rel)
		flog := s.log.WithField("object", key)

		info, err := os.Stat(local)
		if err != nil {
			rep.Failures = append(rep.Failures, Failure{Rel: rel, Reason: err.Error()})
			flog.WithError(err).Warn("missing local file")
			continue
		}

		if !force {
			remote, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
			if err == nil && remote.Size == info.Size() {
				rep.Skipped++
				flog.Debug("skipped (already published)")
				continue
			}
		}

		up, err := s.client.FPutObject(ctx, s.bucket, key, local, minio.PutObjectOptions{
			ContentType:  contentType(rel),
			CacheControl: "public, max-age=31536000",
		})
		if err != nil {
			rep.Failures = append(rep.Failures, Failure{Rel: rel, Reason: err.Error()})
			flog.WithError(err).Warn("upload failed")
			continue
		}
		rep.Uploaded++
		rep.Bytes += up.Size
		flog.WithField("bytes", up.Size).Info("uploaded")
	}
	return rep, nil
}
