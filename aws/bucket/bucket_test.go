package bucket

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeObjectStore struct {
	gotPrefix string
	gotKey    string
	keys      []string
	object    []byte
	listErr   error
	getErr    error
}

func (f *fakeObjectStore) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.gotPrefix = aws.ToString(params.Prefix)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var contents []types.Object
	for _, key := range f.keys {
		contents = append(contents, types.Object{Key: aws.String(key)})
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (f *fakeObjectStore) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotKey = aws.ToString(params.Key)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.object))}, nil
}

func zipWithMembers(t *testing.T, members map[string]string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("could not create archive member: %s", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("could not write archive member: %s", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("could not finish archive: %s", err)
	}
	return buf.Bytes()
}

func TestFindObjectForDateUsesFolderDatePrefix(t *testing.T) {
	store := &fakeObjectStore{keys: []string{
		"reports/2024-10-09/",
		"reports/2024-10-09/report.zip",
	}}
	b := New(store, "recon-bucket", "reports/")

	key, err := b.FindObjectForDate(context.Background(), "2024-10-09")
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	if key != "reports/2024-10-09/report.zip" {
		t.Errorf("Got %s, expected reports/2024-10-09/report.zip", key)
	}
	if store.gotPrefix != "reports/2024-10-09/" {
		t.Errorf("Got prefix %s, expected reports/2024-10-09/", store.gotPrefix)
	}
}

func TestFindObjectForDateNoMatch(t *testing.T) {
	b := New(&fakeObjectStore{}, "recon-bucket", "reports")
	_, err := b.FindObjectForDate(context.Background(), "2024-10-10")
	if !errors.Is(err, ErrNoObjectForDate) {
		t.Errorf("Expected ErrNoObjectForDate, got %v", err)
	}
}

func TestReadZippedCSVsParsesEveryCsvMember(t *testing.T) {
	archive := zipWithMembers(t, map[string]string{
		"transactions.csv": "external_id,amount\ntx-1,100\ntx-2,250\n",
		"readme.txt":       "not part of the report",
	})
	store := &fakeObjectStore{object: archive}
	b := New(store, "recon-bucket", "reports")

	docs, err := b.ReadZippedCSVs(context.Background(), "reports/2024-10-09/report.zip")
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	if len(docs) != 1 {
		t.Errorf("Got %d documents, expected 1", len(docs))
		t.FailNow()
	}
	doc := docs[0]
	if doc.Name != "transactions.csv" {
		t.Errorf("Got %s, expected transactions.csv", doc.Name)
	}
	if len(doc.Header) != 2 || doc.Header[0] != "external_id" {
		t.Errorf("Unexpected header: %v", doc.Header)
	}
	if len(doc.Rows) != 2 || doc.Rows[1][0] != "tx-2" {
		t.Errorf("Unexpected rows: %v", doc.Rows)
	}
}

func TestReadZippedCSVsRejectsNonArchive(t *testing.T) {
	store := &fakeObjectStore{object: []byte("just bytes")}
	b := New(store, "recon-bucket", "reports")
	_, err := b.ReadZippedCSVs(context.Background(), "reports/2024-10-09/report.zip")
	if err == nil {
		t.Error("Should have gotten an error")
	}
}

type fakeApiError struct{ code string }

func (f *fakeApiError) Error() string                 { return f.code }
func (f *fakeApiError) ErrorCode() string             { return f.code }
func (f *fakeApiError) ErrorMessage() string          { return f.code }
func (f *fakeApiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestApiErrorCodeSurfacesInWrappedError(t *testing.T) {
	store := &fakeObjectStore{listErr: &fakeApiError{code: "AccessDenied"}}
	b := New(store, "recon-bucket", "reports")
	_, err := b.FindObjectForDate(context.Background(), "2024-10-09")
	if err == nil {
		t.Error("Should have gotten an error")
		t.FailNow()
	}
	if !strings.Contains(err.Error(), "AccessDenied") {
		t.Errorf("Error should carry the API error code, got: %s", err)
	}
}
