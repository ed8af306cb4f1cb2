package preflight

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"dwhload/internal/observability"
	"dwhload/pkg/errors"
	"dwhload/pkg/models"
)

// ListObjectsAPI is the slice of the S3 client the preflight needs
type ListObjectsAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Location is a parsed s3://bucket/prefix URI
type Location struct {
	Bucket string
	Prefix string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// ParseLocation splits an s3:// URI into bucket and key prefix
func ParseLocation(uri string) (Location, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return Location{}, errors.New(errors.ErrCodeInvalidLocation, fmt.Sprintf("%q is not an s3:// location", uri))
	}

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, errors.New(errors.ErrCodeInvalidLocation, fmt.Sprintf("%q has no bucket", uri))
	}

	return Location{Bucket: bucket, Prefix: prefix}, nil
}

// Checker verifies bulk-load sources exist before COPY runs
type Checker struct {
	client ListObjectsAPI
	logger *observability.Logger
}

// NewChecker creates a checker over an existing client
func NewChecker(client ListObjectsAPI, logger *observability.Logger) *Checker {
	if logger == nil {
		logger = observability.GetDefaultLogger()
	}
	return &Checker{client: client, logger: logger.WithField("component", "preflight")}
}

// NewS3Checker builds a checker from the default AWS credential chain
func NewS3Checker(ctx context.Context, region string, logger *observability.Logger) (*Checker, error) {
	if region == "" {
		region = models.DefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePreflightFailed, "Failed to load AWS configuration").
			WithSuggestions("Configure AWS credentials (environment, shared config or instance role)")
	}

	return NewChecker(s3.NewFromConfig(cfg), logger), nil
}

// Sources lists the locations COPY reads from
func Sources(cfg models.S3) []string {
	return []string{cfg.LogData, cfg.LogJSONPath, cfg.SongData}
}

// Check confirms every location has at least one object under it
func (c *Checker) Check(ctx context.Context, locations ...string) error {
	for _, uri := range locations {
		loc, err := ParseLocation(uri)
		if err != nil {
			return err
		}

		out, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(loc.Bucket),
			Prefix:  aws.String(loc.Prefix),
			MaxKeys: aws.Int32(1),
		})
		if err != nil {
			return errors.PreflightError(uri, err)
		}
		if len(out.Contents) == 0 {
			return errors.PreflightError(uri, nil)
		}

		c.logger.DebugWithFields("Source found", map[string]interface{}{
			"location":     uri,
			"first_object": aws.ToString(out.Contents[0].Key),
		})
	}

	return nil
}
