package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/config"
)

const defaultPresignTTL = 7 * 24 * time.Hour

// S3 stores books as objects in an S3-compatible bucket. The folder ID is
// used as the object key prefix.
type S3 struct {
	client     *minio.Client
	bucket     string
	region     string
	presign    bool
	presignTTL time.Duration
	logger     *zap.Logger
}

// NewS3 creates an S3 backend. No network traffic happens until
// Authenticate.
func NewS3(cfg config.S3Config, logger *zap.Logger) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &S3{
		client:     client,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		presign:    cfg.Presign,
		presignTTL: ttl,
		logger:     logger,
	}, nil
}

// Authenticate checks the credentials by looking up the bucket, creating it
// when absent.
func (s *S3) Authenticate(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return s.wrap("checking bucket", err)
	}
	if exists {
		s.logger.Debug("bucket exists", zap.String("bucket", s.bucket))
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return s.wrap("creating bucket", err)
	}
	s.logger.Info("created bucket", zap.String("bucket", s.bucket))
	return nil
}

// UploadFile puts the file at <folderID>/<name>. The object key is the
// returned file ID.
func (s *S3) UploadFile(ctx context.Context, filePath, name, folderID string) (string, error) {
	key := objectKey(folderID, name)
	info, err := s.client.FPutObject(ctx, s.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return "", s.wrap("uploading "+name, err)
	}
	s.logger.Debug("uploaded object",
		zap.String("key", key),
		zap.Int64("size", info.Size),
	)
	return key, nil
}

// MakePublic grants anonymous read on the object's prefix. With presigned
// links enabled nothing needs to change.
func (s *S3) MakePublic(ctx context.Context, fileID string) error {
	if s.presign {
		return nil
	}
	current, err := s.client.GetBucketPolicy(ctx, s.bucket)
	if err != nil {
		return s.wrap("reading bucket policy", err)
	}
	updated, changed, err := grantPublicRead(current, s.bucket, publicPrefix(fileID))
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, updated); err != nil {
		return s.wrap("setting bucket policy", err)
	}
	return nil
}

// ShareableLink returns a presigned GET URL or the plain object URL.
func (s *S3) ShareableLink(ctx context.Context, fileID string) (string, error) {
	if s.presign {
		u, err := s.client.PresignedGetObject(ctx, s.bucket, fileID, s.presignTTL, url.Values{})
		if err != nil {
			return "", s.wrap("presigning "+fileID, err)
		}
		return u.String(), nil
	}
	return publicObjectURL(s.client.EndpointURL(), s.bucket, fileID), nil
}

// Publish uploads a generated page to the bucket root.
func (s *S3) Publish(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(name)})
	if err != nil {
		return "", s.wrap("publishing "+name, err)
	}
	if err := s.MakePublic(ctx, name); err != nil {
		return "", err
	}
	return s.ShareableLink(ctx, name)
}

func (s *S3) wrap(op string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "InvalidToken", "ExpiredToken":
		return fmt.Errorf("%s: %w: %w", op, ErrAuthentication, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func objectKey(folderID, name string) string {
	folderID = strings.Trim(folderID, "/")
	if folderID == "" {
		return name
	}
	return folderID + "/" + name
}

// publicPrefix is the policy resource covering fileID: its folder, or the
// object itself when it sits at the bucket root.
func publicPrefix(fileID string) string {
	dir := path.Dir(fileID)
	if dir == "." || dir == "/" {
		return fileID
	}
	return dir + "/*"
}

func publicObjectURL(endpoint *url.URL, bucket, key string) string {
	u := *endpoint
	u.Path = "/" + bucket + "/" + key
	return u.String()
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string         `json:"Sid,omitempty"`
	Effect    string         `json:"Effect"`
	Principal map[string]any `json:"Principal"`
	Action    any            `json:"Action"`
	Resource  any            `json:"Resource"`
}

// grantPublicRead adds an anonymous s3:GetObject statement for prefix to
// the policy document current. It reports whether the document changed.
func grantPublicRead(current, bucket, prefix string) (string, bool, error) {
	pol := bucketPolicy{Version: "2012-10-17"}
	if strings.TrimSpace(current) != "" {
		if err := json.Unmarshal([]byte(current), &pol); err != nil {
			return "", false, fmt.Errorf("parsing bucket policy: %w", err)
		}
	}

	resource := "arn:aws:s3:::" + bucket + "/" + prefix
	for _, st := range pol.Statement {
		if st.Effect == "Allow" && containsString(st.Resource, resource) && containsString(st.Action, "s3:GetObject") {
			return current, false, nil
		}
	}

	pol.Statement = append(pol.Statement, policyStatement{
		Effect:    "Allow",
		Principal: map[string]any{"AWS": []string{"*"}},
		Action:    []string{"s3:GetObject"},
		Resource:  []string{resource},
	})
	out, err := json.Marshal(pol)
	if err != nil {
		return "", false, err
	}
	return string(out), true, nil
}

// containsString matches policy fields that may be a string or a list.
func containsString(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok && s == want {
				return true
			}
		}
	case []string:
		for _, s := range t {
			if s == want {
				return true
			}
		}
	}
	return false
}

var _ interface {
	Storage
	Publisher
} = (*S3)(nil)

// IsAuth reports whether err came from a rejected credential.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuthentication)
}
