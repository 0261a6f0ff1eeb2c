package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config describes how to reach a bucket.
type S3Config struct {
	Bucket string
	Prefix string
	Region string

	// Endpoint overrides the AWS endpoint, e.g. for MinIO.
	Endpoint string

	// PathStyle addresses the bucket in the URL path instead of the host.
	PathStyle bool

	// AccessKeyID and SecretAccessKey are static credentials. When empty,
	// requests are sent anonymously.
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:                     cfg.Region,
		UsePathStyle:               cfg.PathStyle,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Source:          "kinesis-config",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(opts)
}

// S3Store stores snapshots in AWS S3.
//
// Example usage:
//
//	client := snapshot.NewS3Client(snapshot.S3Config{Region: "eu-west-1"})
//	store := snapshot.NewS3Store(client, "my-bucket", "snapshots/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a new S3 snapshot store.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3Store) key(name string) string {
	return s.prefix + name + ".html"
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, snap *Snapshot) error {
	if err := prepare(snap); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(snap.Name)),
		Body:          bytes.NewReader(snap.HTML),
		ContentLength: aws.Int64(int64(len(snap.HTML))),
		ContentType:   aws.String("text/html; charset=utf-8"),
		Metadata: map[string]string{
			"component":  snap.Component,
			"events":     formatEvents(snap.Events),
			"created-at": snap.CreatedAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *S3Store) Load(ctx context.Context, name string) (*Snapshot, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 download failed: %w", err)
	}
	defer out.Body.Close()

	html, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Name:      name,
		Component: out.Metadata["component"],
		Events:    parseEvents(out.Metadata["events"]),
		HTML:      html,
	}
	if ts, err := time.Parse(time.RFC3339, out.Metadata["created-at"]); err == nil {
		snap.CreatedAt = ts
	}
	return snap, nil
}

// List implements Store.
func (s *S3Store) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			name, ok := strings.CutSuffix(strings.TrimPrefix(*obj.Key, s.prefix), ".html")
			if ok && ValidName(name) {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func formatEvents(events []uint32) string {
	parts := make([]string, len(events))
	for i, ev := range events {
		parts[i] = strconv.FormatUint(uint64(ev), 10)
	}
	return strings.Join(parts, ",")
}

func parseEvents(s string) []uint32 {
	if s == "" {
		return nil
	}
	var events []uint32
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil
		}
		events = append(events, uint32(v))
	}
	return events
}
