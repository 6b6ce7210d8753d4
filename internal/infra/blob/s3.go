// Package blob archives raw uploads in an S3-compatible bucket.
package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/gridspace-io/gridspace/internal/config"
)

// Uploader is the part of manager.Uploader the archive needs.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type S3Deps struct {
	Client   *s3.Client
	Uploader Uploader
	Bucket   string
	SSE      *s3types.ServerSideEncryption
}

func NewS3(ctx context.Context, cfg *config.Config) (*S3Deps, error) {
	if cfg.S3.Bucket == "" {
		return nil, errors.New("s3 bucket is empty")
	}

	loadOpts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		loadOpts = append(loadOpts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		))
	}
	acfg, err := awsCfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.S3.Endpoint)
	client := s3.NewFromConfig(acfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	deps := &S3Deps{
		Client:   client,
		Uploader: manager.NewUploader(client),
		Bucket:   cfg.S3.Bucket,
	}
	if cfg.S3.SSE != "" {
		sse := s3types.ServerSideEncryption(cfg.S3.SSE)
		deps.SSE = &sse
	}
	return deps, nil
}

// normalizeEndpoint accepts a bare host (R2, MinIO) or a full URL.
func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" {
		return ""
	}
	if !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
		ep = "https://" + ep
	}
	u, err := url.Parse(ep)
	if err != nil {
		return ""
	}
	return u.String()
}

// ImportArchive keeps raw CSV uploads for audit.
type ImportArchive struct {
	s3  *S3Deps
	now func() time.Time
}

func NewImportArchive(s3 *S3Deps) *ImportArchive {
	return &ImportArchive{s3: s3, now: time.Now}
}

// archiveKey is imports/<tableID>/YYYY/MM/DD/<sha256>.csv, so re-uploading the same file on the
// same day overwrites one object.
func archiveKey(tableID string, at time.Time, sumHex string) string {
	return path.Join("imports", tableID, at.UTC().Format("2006/01/02"), sumHex+".csv")
}

// Archive stores the upload and returns its object key.
func (a *ImportArchive) Archive(ctx context.Context, tableID, filename string, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	sumHex := hex.EncodeToString(sum[:])
	key := archiveKey(tableID, a.now(), sumHex)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.s3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
		Metadata: map[string]string{
			"sha256":   sumHex,
			"filename": filename,
			"table-id": tableID,
		},
	}
	if a.s3.SSE != nil {
		input.ServerSideEncryption = *a.s3.SSE
	}

	if _, err := a.s3.Uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("archive import: %w", err)
	}
	return key, nil
}
