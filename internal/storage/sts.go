package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/aliyun/alibaba-cloud-sdk-go/services/sts"
)

var ErrSTSNotConfigured = errors.New("sts role is not configured")

type STSCredentials struct {
	AccessKeyId     string `json:"accessKeyId"`
	AccessKeySecret string `json:"accessKeySecret"`
	SecurityToken   string `json:"securityToken"`
	Expiration      string `json:"expiration"`
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
}

// TokenIssuer hands out temporary credentials for the image bucket.
type TokenIssuer interface {
	IssueToken(ctx context.Context) (*STSCredentials, error)
}

// STSIssuer assumes the configured RAM role.
type STSIssuer struct {
	cfg OSSConfig
}

func NewSTSIssuer(cfg OSSConfig) *STSIssuer {
	return &STSIssuer{cfg: cfg}
}

// stsRegion drops the "oss-" prefix: STS wants "cn-beijing", not "oss-cn-beijing".
func stsRegion(region string) string {
	if after, ok := strings.CutPrefix(region, "oss-"); ok {
		return after
	}
	return region
}

func (s *STSIssuer) IssueToken(ctx context.Context) (*STSCredentials, error) {
	if s.cfg.RoleArn == "" {
		return nil, ErrSTSNotConfigured
	}

	client, err := sts.NewClientWithAccessKey(stsRegion(s.cfg.Region), s.cfg.AccessKeyID, s.cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	request := sts.CreateAssumeRoleRequest()
	request.Scheme = "https"
	request.RoleArn = s.cfg.RoleArn
	request.RoleSessionName = "promptgallery-session"
	request.DurationSeconds = "3600"

	response, err := client.AssumeRole(request)
	if err != nil {
		return nil, err
	}

	return &STSCredentials{
		AccessKeyId:     response.Credentials.AccessKeyId,
		AccessKeySecret: response.Credentials.AccessKeySecret,
		SecurityToken:   response.Credentials.SecurityToken,
		Expiration:      response.Credentials.Expiration,
		Region:          s.cfg.Region,
		Bucket:          s.cfg.Bucket,
	}, nil
}
