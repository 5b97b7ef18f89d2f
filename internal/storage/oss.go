package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"promptgallery-backend/config"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type OSSConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	AccessKeySecret string
	RoleArn         string
}

func OSSConfigFrom(cfg *config.Config) OSSConfig {
	return OSSConfig{
		Endpoint:        cfg.OSSEndpoint,
		Region:          cfg.OSSRegion,
		Bucket:          cfg.OSSBucketName,
		AccessKeyID:     cfg.OSSAccessKeyID,
		AccessKeySecret: cfg.OSSAccessKeySecret,
		RoleArn:         cfg.OSSRoleArn,
	}
}

// OSSStore writes to an Aliyun OSS bucket. With a role ARN every operation
// runs on fresh STS credentials, otherwise on the static key pair.
type OSSStore struct {
	cfg    OSSConfig
	tokens TokenIssuer
}

func NewOSSStore(cfg OSSConfig) (*OSSStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("oss endpoint and bucket are required")
	}
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, errors.New("oss access key is missing")
	}

	store := &OSSStore{cfg: cfg}
	if cfg.RoleArn != "" {
		store.tokens = NewSTSIssuer(cfg)
	}
	return store, nil
}

// Tokens returns the STS issuer, or nil when the store uses static keys.
func (s *OSSStore) Tokens() TokenIssuer {
	return s.tokens
}

func (s *OSSStore) bucket(ctx context.Context) (*oss.Bucket, error) {
	var (
		client *oss.Client
		err    error
	)

	if s.tokens != nil {
		creds, tokenErr := s.tokens.IssueToken(ctx)
		if tokenErr != nil {
			return nil, fmt.Errorf("failed to get STS token: %w", tokenErr)
		}
		client, err = oss.New(s.cfg.Endpoint, creds.AccessKeyId, creds.AccessKeySecret,
			oss.SecurityToken(creds.SecurityToken),
			oss.Timeout(60, 120),
		)
	} else {
		client, err = oss.New(s.cfg.Endpoint, s.cfg.AccessKeyID, s.cfg.AccessKeySecret, oss.Timeout(60, 120))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(s.cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}
	return bucket, nil
}

func (s *OSSStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	bucket, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	var options []oss.Option
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}
	if err := bucket.PutObject(key, body, options...); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return s.ObjectURL(key), nil
}

func (s *OSSStore) Delete(ctx context.Context, key string) error {
	bucket, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	if err := bucket.DeleteObject(key); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// ObjectURL is the public URL of key: <scheme>://<bucket>.<endpoint>/<key>.
func (s *OSSStore) ObjectURL(key string) string {
	scheme, host := "https", s.cfg.Endpoint
	if parts := strings.SplitN(host, "://", 2); len(parts) == 2 {
		scheme, host = parts[0], parts[1]
	}
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf("%s://%s.%s/%s", scheme, s.cfg.Bucket, host, strings.TrimPrefix(key, "/"))
}
