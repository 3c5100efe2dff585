package cascade

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/glorenz/netbot/configs"
)

// Storage uploads rendered slides to Cloudflare R2 and returns their
// public URLs. The Graph API fetches media by URL, so every upload must
// be publicly reachable via the bucket's public domain.
type Storage struct {
	cfg    config.R2
	client *s3.Client
}

func NewStorage(ctx context.Context, cfg config.R2) (*Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})
	return &Storage{cfg: cfg, client: client}, nil
}

// Upload sniffs the image type, stores it under a generated key, and
// returns the public URL.
func (s *Storage) Upload(ctx context.Context, data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return "", fmt.Errorf("unsupported file type: %v", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("drafts/%s/%s.%s", time.Now().Format("2006-01-02"), id, kind.Extension)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		return "", fmt.Errorf("r2 upload: %w", err)
	}

	url := fmt.Sprintf("https://%s/%s", s.cfg.PublicDomain, key)
	slog.Info("slide uploaded", "key", key)
	return url, nil
}

// UploadAll uploads every slide and returns the URLs in order. Fails on
// the first error; a carousel with missing slides must not publish.
func (s *Storage) UploadAll(ctx context.Context, files [][]byte) ([]string, error) {
	urls := make([]string, 0, len(files))
	for i, data := range files {
		url, err := s.Upload(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}
