package bucket

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

var ErrNoObjectForDate = errors.New("no object found for date")

// The two S3 operations this package needs, satisfied by *s3.Client.
type ObjectLister interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type ObjectStore interface {
	ObjectLister
	ObjectGetter
}

// Bucket reads daily report archives laid out as {folder}/{date}/{file}.
type Bucket struct {
	client ObjectStore
	name   string
	folder string
}

func New(client ObjectStore, name, folder string) *Bucket {
	return &Bucket{client: client, name: name, folder: strings.Trim(folder, "/")}
}

// FindObjectForDate returns the key of the first object under the date
// partition of the report folder. Dates use the YYYY-MM-DD form the report
// producer writes.
func (b *Bucket) FindObjectForDate(ctx context.Context, date string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", b.folder, date)
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return "", classifyError("list objects", err)
	}
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		// Skip the folder placeholder some tools create.
		if strings.HasSuffix(key, "/") {
			continue
		}
		return key, nil
	}
	return "", fmt.Errorf("%w: no key under %s", ErrNoObjectForDate, prefix)
}

// CSVDocument is one CSV file extracted out of a report archive.
type CSVDocument struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadZippedCSVs downloads the object and parses every CSV member of the
// archive. The archives are small daily reports so buffering them in memory
// is fine.
func (b *Bucket) ReadZippedCSVs(ctx context.Context, key string) ([]CSVDocument, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyError("get object", err)
	}
	defer out.Body.Close()
	blob, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read object body: %w", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, fmt.Errorf("object %s is not a zip archive: %w", key, err)
	}

	var docs []CSVDocument
	for _, member := range reader.File {
		if !strings.HasSuffix(strings.ToLower(member.Name), ".csv") {
			slog.DebugContext(ctx, "Skipping non-CSV archive member", "member", member.Name)
			continue
		}
		doc, err := readCsvMember(member)
		if err != nil {
			return nil, fmt.Errorf("could not read archive member %s: %w", member.Name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReportForDate is the lookup and download in one go.
func (b *Bucket) ReportForDate(ctx context.Context, date string) ([]CSVDocument, error) {
	key, err := b.FindObjectForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Found report object", "bucket", b.name, "key", key)
	return b.ReadZippedCSVs(ctx, key)
}

func readCsvMember(member *zip.File) (CSVDocument, error) {
	rc, err := member.Open()
	if err != nil {
		return CSVDocument{}, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	records, err := reader.ReadAll()
	if err != nil {
		return CSVDocument{}, err
	}
	doc := CSVDocument{Name: member.Name}
	if len(records) > 0 {
		doc.Header = records[0]
		doc.Rows = records[1:]
	}
	return doc, nil
}

// Keep the API error code visible in the wrapped error so callers can tell
// permission problems apart from missing data.
func classifyError(operation string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s failed with %s: %w", operation, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
