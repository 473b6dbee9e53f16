package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/sitedrop/internal/session"
)

const archiveConcurrency = 4

type R2Options struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string

	// Endpoint overrides the account endpoint, e.g. for a local S3 emulator.
	Endpoint string
}

// R2Storage keeps a copy of every deployed file in an R2 bucket under
// deployments/{slug}/{index}.
type R2Storage struct {
	client *s3.Client
	bucket string
}

// NewR2Storage initializes the R2 client using static credentials and custom endpoint.
func NewR2Storage(opts R2Options) (*R2Storage, error) {
	if opts.BucketName == "" {
		return nil, errors.New("r2 bucket name is required")
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		if opts.AccountID == "" {
			return nil, errors.New("r2 account id is required")
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	}
	region := opts.Region
	if region == "" {
		region = "auto"
	}

	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Region:      region,
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{client: client, bucket: opts.BucketName}, nil
}

// ArtifactKey is the object key of the index-th file of a deployment.
func ArtifactKey(slug string, index int) string {
	return fmt.Sprintf("deployments/%s/%d", slug, index)
}

// Archive uploads the files concurrently. The original file name is kept in
// the Content-Disposition so presigned downloads get the right name.
func (r *R2Storage) Archive(ctx context.Context, slug string, files []session.StagedFile) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(archiveConcurrency)
	for i, f := range files {
		g.Go(func() error {
			_, err := r.client.PutObject(gctx, &s3.PutObjectInput{
				Bucket:             aws.String(r.bucket),
				Key:                aws.String(ArtifactKey(slug, i)),
				Body:               bytes.NewReader(f.Content),
				ContentLength:      aws.Int64(f.Size()),
				ContentType:        aws.String(contentType(f.Name)),
				ContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": f.Name})),
			})
			if err != nil {
				return fmt.Errorf("archive %s: %w", f.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// PresignArtifact creates a presigned URL for downloading an archived file.
func (r *R2Storage) PresignArtifact(ctx context.Context, slug string, index int, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(r.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(ArtifactKey(slug, index)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// HasArtifact reports whether a file of slug was archived. Archiving is best
// effort, so a recorded deployment may have no objects.
func (r *R2Storage) HasArtifact(ctx context.Context, slug string, index int) (bool, error) {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(ArtifactKey(slug, index)),
	})
	if err != nil {
		var nsk *s3types.NotFound
		if errors.As(err, &nsk) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
