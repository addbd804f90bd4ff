package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/festreg/internal/logging"
	sc "github.com/dmitrijs2005/festreg/internal/server/config"
	"github.com/dmitrijs2005/festreg/internal/server/models"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

var csvHeader = []string{
	"id", "name", "rollNumber", "year", "section", "event",
	"transactionId", "email", "loggedEmail", "createdAt",
}

// ExportResult describes an uploaded export.
type ExportResult struct {
	Key   string
	URL   string
	Count int
}

type ExportService struct {
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewExportService(m repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *ExportService {
	return &ExportService{
		repomanager: m,
		config:      config,
		logger:      logger.With("module", "export"),
	}
}

// GetExportStorageKey builds a date-partitioned object key for an export.
func GetExportStorageKey(format string, now time.Time) string {
	return fmt.Sprintf("exports/%d/%02d/%02d/registrations-%s.%s",
		now.Year(), now.Month(), now.Day(), uuid.New(), format)
}

// Write encodes every registration, oldest first, to w and returns how many
// were written.
func (s *ExportService) Write(ctx context.Context, w io.Writer, format string) (int, error) {
	regs, err := s.repomanager.Registrations().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list registrations: %w", err)
	}

	switch format {
	case FormatCSV:
		err = writeCSV(w, regs)
	case FormatJSON:
		err = writeJSON(w, regs)
	default:
		return 0, fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return 0, err
	}

	return len(regs), nil
}

// Upload writes an export to the configured bucket and returns a presigned
// download link for it.
func (s *ExportService) Upload(ctx context.Context, format string) (*ExportResult, error) {
	var buf bytes.Buffer
	n, err := s.Write(ctx, &buf, format)
	if err != nil {
		return nil, err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := GetExportStorageKey(format, time.Now().UTC())

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType(format)),
	})
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ExportPresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.logger.Info(ctx, "export uploaded", "key", key, "registrations", n)

	return &ExportResult{Key: key, URL: req.URL, Count: n}, nil
}

func (s *ExportService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			// MinIO and similar stores serve buckets by path.
			o.UsePathStyle = true
		}
	}), nil
}

func contentType(format string) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

func writeCSV(w io.Writer, regs []*models.Registration) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range regs {
		err := cw.Write([]string{
			r.ID, r.Name, r.RollNumber, r.Year, r.Section,
			strings.Join(r.Events, "; "),
			r.TransactionID, r.Email, r.LoggedEmail,
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, regs []*models.Registration) error {
	if regs == nil {
		regs = []*models.Registration{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(regs)
}
