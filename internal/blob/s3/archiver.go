package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// minPartSize is the minimum allowed part size for S3 multipart uploads (5 MiB).
const minPartSize int64 = 5 * 1024 * 1024

// Archiver implements domain.ReportArchiver on top of an S3-compatible
// object store. Reports are written as pretty-printed JSON under
// <prefix>/<yyyy>/<mm>/<dd>/report-<uuid>.json so daily runs group
// naturally in bucket listings.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ domain.ReportArchiver = (*Archiver)(nil)

// NewArchiver creates an Archiver writing into the client's bucket under
// the given key prefix. An empty prefix places reports at the bucket root.
func NewArchiver(c *Client, prefix string) *Archiver {
	return &Archiver{
		client: c.s3,
		bucket: c.bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Archive uploads the report and returns the object key it was written
// under. Uploads go through the multipart manager so oversized reports
// (full reference scans on busy days) do not need special casing.
func (a *Archiver) Archive(ctx context.Context, report domain.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal report: %w", err)
	}

	key := a.reportKey(report)

	uploader := manager.NewUploader(a.client, func(u *manager.Uploader) {
		u.PartSize = minPartSize
	})

	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("s3blob: upload report %s: %w", key, err)
	}
	return key, nil
}

func (a *Archiver) reportKey(report domain.Report) string {
	ts := report.Timestamp.UTC()
	key := fmt.Sprintf("%04d/%02d/%02d/report-%s.json",
		ts.Year(), ts.Month(), ts.Day(), uuid.NewString())
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}
	return key
}
