package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"launchpd/internal/config"
)

// ErrNoActive is returned when a subdomain has no active pointer object.
var ErrNoActive = errors.New("no active version recorded")

// S3API is the subset of the S3 client the legacy store uses.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// VersionMeta is the per-version object of the legacy layout.
type VersionMeta struct {
	Version    int        `json:"version"`
	FolderName string     `json:"folderName,omitempty"`
	FileCount  int        `json:"fileCount"`
	TotalBytes int64      `json:"totalBytes"`
	Message    string     `json:"message,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type activePointer struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// S3Store reads version metadata from the legacy bucket layout:
// <subdomain>/_meta/versions/<n>.json and <subdomain>/_meta/active.json.
type S3Store struct {
	client S3API
	bucket string
}

// NewS3Store wraps an existing client.
func NewS3Store(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// OpenS3Store builds a client for the configured legacy bucket.
func OpenS3Store(ctx context.Context, cfg config.LegacyConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Store(client, cfg.Bucket), nil
}

func versionsPrefix(subdomain string) string {
	return path.Join(subdomain, "_meta", "versions") + "/"
}

func activeKey(subdomain string) string {
	return path.Join(subdomain, "_meta", "active.json")
}

// Versions lists the version objects of subdomain, oldest first.
func (s *S3Store) Versions(ctx context.Context, subdomain string) ([]VersionMeta, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(versionsPrefix(subdomain)),
	})

	var metas []VersionMeta
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list legacy versions: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			n, ok := versionFromKey(key)
			if !ok {
				continue
			}
			var meta VersionMeta
			if err := s.getJSON(ctx, key, &meta); err != nil {
				return nil, err
			}
			if meta.Version == 0 {
				meta.Version = n
			}
			metas = append(metas, meta)
		}
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].Version < metas[j].Version })
	return metas, nil
}

func versionFromKey(key string) (int, bool) {
	base := path.Base(key)
	if !strings.HasSuffix(base, ".json") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(base, ".json"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Active returns the active version of subdomain, ErrNoActive if unset.
func (s *S3Store) Active(ctx context.Context, subdomain string) (int, error) {
	var p activePointer
	if err := s.getJSON(ctx, activeKey(subdomain), &p); err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return 0, ErrNoActive
		}
		return 0, err
	}
	return p.Version, nil
}

// SetActive repoints the active object at version.
func (s *S3Store) SetActive(ctx context.Context, subdomain string, version int) error {
	data, err := json.Marshal(activePointer{Version: version, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(activeKey(subdomain)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("write legacy active pointer: %w", err)
	}
	return nil
}

func (s *S3Store) getJSON(ctx context.Context, key string, v interface{}) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	return nil
}
