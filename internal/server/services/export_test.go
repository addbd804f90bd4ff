package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/festreg/internal/logging"
	"github.com/dmitrijs2005/festreg/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegs() []*models.Registration {
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	return []*models.Registration{
		{
			ID: "11111111-1111-1111-1111-111111111111", Name: "Asha Rao", RollNumber: "R100",
			Year: "3", Section: "B", Events: models.EventSet{"Project Expo", "Hyperlink Hustle"},
			TransactionID: "UPI-1", Email: "asha@example.com", LoggedEmail: "asha@college.edu",
			CreatedAt: at, UpdatedAt: at,
		},
		{
			ID: "22222222-2222-2222-2222-222222222222", Name: "Ravi, Jr.", RollNumber: "R101",
			Year: "2", Section: "A", Events: models.EventSet{"Mystery of Doors & Memory Lane"},
			TransactionID: "UPI-2", Email: "ravi@example.com", LoggedEmail: "ravi@college.edu",
			CreatedAt: at.Add(time.Minute), UpdatedAt: at.Add(time.Minute),
		},
	}
}

func newExportService(repo *fakeRegsRepo) *ExportService {
	cfg := testConfig()
	cfg.S3Region = "us-east-1"
	cfg.S3RootUser = "minioadmin"
	cfg.S3RootPassword = "minioadmin"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000"
	cfg.S3Bucket = "festreg"
	cfg.ExportPresignExpiry = 30 * time.Minute
	return NewExportService(&fakeRepoManager{r: repo}, cfg, logging.Nop{})
}

func TestExportWrite_CSV(t *testing.T) {
	svc := newExportService(&fakeRegsRepo{list: sampleRegs()})

	var buf bytes.Buffer
	n, err := svc.Write(context.Background(), &buf, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "Project Expo; Hyperlink Hustle", records[1][5])
	assert.Equal(t, "Ravi, Jr.", records[2][1])
	assert.Equal(t, "2026-02-10T09:30:00Z", records[1][9])
}

func TestExportWrite_JSON(t *testing.T) {
	svc := newExportService(&fakeRegsRepo{list: sampleRegs()})

	var buf bytes.Buffer
	_, err := svc.Write(context.Background(), &buf, FormatJSON)
	require.NoError(t, err)

	var got []models.Registration
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "R101", got[1].RollNumber)
}

func TestExportWrite_EmptyJSONIsArray(t *testing.T) {
	svc := newExportService(&fakeRegsRepo{})

	var buf bytes.Buffer
	n, err := svc.Write(context.Background(), &buf, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestExportWrite_Errors(t *testing.T) {
	svc := newExportService(&fakeRegsRepo{})
	_, err := svc.Write(context.Background(), io.Discard, "xml")
	assert.ErrorContains(t, err, "unknown export format")

	svc = newExportService(&fakeRegsRepo{listErr: errors.New("boom")})
	_, err = svc.Write(context.Background(), io.Discard, FormatCSV)
	assert.ErrorContains(t, err, "boom")
}

func stubS3(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
			t.Fatalf("BaseEndpoint not applied")
		}
		if !opts.UsePathStyle {
			t.Fatalf("path style not enabled")
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestExportUpload_Success(t *testing.T) {
	stubS3(t)

	var uploaded []byte
	var uploadedKey, contentType string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		uploadedKey = *in.Key
		contentType = *in.ContentType
		uploaded, _ = io.ReadAll(in.Body)
		assert.Equal(t, "festreg", *in.Bucket)
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, 30*time.Minute, po.Expires)
		assert.Equal(t, uploadedKey, *in.Key)
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/festreg/" + *in.Key + "?sig=1"}, nil
	}

	svc := newExportService(&fakeRegsRepo{list: sampleRegs()})
	res, err := svc.Upload(context.Background(), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, uploadedKey, res.Key)
	assert.True(t, strings.HasPrefix(res.Key, "exports/"))
	assert.True(t, strings.HasSuffix(res.Key, ".csv"))
	assert.Contains(t, res.URL, res.Key)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(uploaded), "R100")
}

func TestExportUpload_PutError(t *testing.T) {
	stubS3(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("access denied")
	}

	svc := newExportService(&fakeRegsRepo{list: sampleRegs()})
	_, err := svc.Upload(context.Background(), FormatJSON)
	assert.ErrorContains(t, err, "upload export: access denied")
}

func TestExportUpload_AWSConfigError(t *testing.T) {
	stubS3(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	svc := newExportService(&fakeRegsRepo{})
	_, err := svc.Upload(context.Background(), FormatCSV)
	assert.ErrorContains(t, err, "s3 client: no config")
}

func TestGetExportStorageKey(t *testing.T) {
	key := GetExportStorageKey(FormatJSON, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "exports/2026/03/04/registrations-"), key)
	assert.True(t, strings.HasSuffix(key, ".json"), key)
}
