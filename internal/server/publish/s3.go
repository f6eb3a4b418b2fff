// Package publish выкладывает экспортированные календари в S3-совместимое
// хранилище и выдает на них временные ссылки.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/iudanet/taskkeeper/internal/server/config"
)

// CalendarContentType тип содержимого загружаемых .ics файлов
const CalendarContentType = "text/calendar; charset=utf-8"

// ErrNotConfigured возвращается, если bucket не задан
var ErrNotConfigured = errors.New("s3 publishing is not configured")

// Подменяются в тестах
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Link временная ссылка на опубликованный календарь
type Link struct {
	ExpiresAt time.Time `json:"expiresAt"`
	URL       string    `json:"url"`
}

// S3Publisher загружает календари в bucket и подписывает GET ссылки
type S3Publisher struct {
	client  *s3.Client
	presign *s3.PresignClient
	now     func() time.Time
	bucket  string
	ttl     time.Duration
}

// NewS3Publisher создает клиент S3 по настройкам.
// Используется path-style адресация, чтобы работать с MinIO.
func NewS3Publisher(ctx context.Context, cfg config.S3Config) (*S3Publisher, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
		// MinIO и другие совместимые хранилища не всегда понимают trailing checksum
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Publisher{
		client:  client,
		presign: newS3PresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     cfg.LinkTTL,
		now:     time.Now,
	}, nil
}

// objectKey ключ нового объекта: calendars/<owner>/<uuid>.ics
func objectKey(ownerID string) string {
	return fmt.Sprintf("calendars/%s/%s.ics", ownerID, uuid.New())
}

// Publish загружает календарь владельца и возвращает подписанную ссылку на него
func (p *S3Publisher) Publish(ctx context.Context, ownerID string, calendar []byte) (*Link, error) {
	key := objectKey(ownerID)

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(calendar),
		ContentLength: aws.Int64(int64(len(calendar))),
		ContentType:   aws.String(CalendarContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload calendar: %w", err)
	}

	expiresAt := p.now().Add(p.ttl)
	req, err := presignGetObject(p.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign calendar url: %w", err)
	}

	return &Link{URL: req.URL, ExpiresAt: expiresAt}, nil
}
