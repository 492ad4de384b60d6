// Package uploads issues presigned S3 PUT URLs so the admin UI can upload
// images (app icons, blog covers) straight to object storage without the
// bytes passing through the API server.
package uploads

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/config"
)

const presignExpiry = 15 * time.Minute

// Presigner builds presigned PUT and GET URLs against the configured
// S3-compatible backend (MinIO in development).
type Presigner struct {
	config *sc.Config
}

func NewPresigner(config *sc.Config) *Presigner {
	return &Presigner{config: config}
}

// RandomStorageKey spreads uploads over date-based prefixes.
func RandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("uploads/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (p *Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(p.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3RootUser,
			p.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return s3.NewPresignClient(client), nil
}

// PresignedPutURL returns a fresh storage key and a URL the caller can PUT
// the object to within presignExpiry.
func (p *Presigner) PresignedPutURL(ctx context.Context, contentType string) (string, string, error) {
	pc, err := p.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := p.config.S3Bucket
	key := RandomStorageKey()

	in := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}
	if contentType != "" {
		in.ContentType = &contentType
	}

	req, err := pc.PresignPutObject(ctx, in, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignedGetURL returns a time-limited download URL for an uploaded object.
func (p *Presigner) PresignedGetURL(ctx context.Context, key string) (string, error) {
	pc, err := p.presignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.config.S3Bucket

	req, err := pc.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
