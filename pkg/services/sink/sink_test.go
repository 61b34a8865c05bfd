package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/viability/pkg/adapters"
	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, name, contentType, data)
	return args.String(0), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Add(ctx context.Context, report store.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

type mockBlob struct {
	mock.Mock
}

func (m *mockBlob) UploadBuffer(
	ctx context.Context,
	containerName, blobName string,
	buffer []byte,
	o *azblob.UploadBufferOptions,
) (azblob.UploadBufferResponse, error) {
	args := m.Called(ctx, containerName, blobName, buffer, o)
	return azblob.UploadBufferResponse{}, args.Error(0)
}

func testReport() domain.Report {
	return domain.Report{
		ID:              "0b7c6f2e-1111-2222-3333-444455556666",
		Title:           domain.ReportTitle,
		GeneratedAt:     time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Summary:         "Looks viable.",
		Recommendations: []string{"Proceed"},
		Sections: []domain.Section{
			{Heading: "Market Analysis", Body: "Strong demand for **solar**.\n\n- rooftop\n- utility"},
			{Heading: "Investment Analysis", Body: "NPV: 1.00\nROI: 2.00%\nPayback Period: 2"},
			{Heading: "Cash Flow Prediction", Body: "An error occurred while processing: parse error", Failed: true},
		},
	}
}

func TestMarkdownRenderer_Render(t *testing.T) {
	out, err := MarkdownRenderer{}.Render(adapters.MapReportDomainToDocument(testReport()))
	require.NoError(t, err)

	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# Investment Analysis Report\n\n_Generated on: 2026-03-14 09:26:53_"))
	assert.Contains(t, md, "## Executive Summary\n\nLooks viable.")
	assert.Contains(t, md, "## Recommendations\n\n- Proceed")
	assert.Contains(t, md, "NPV: 1.00  \nROI: 2.00%  \nPayback Period: 2")
	assert.Contains(t, md, "**An error occurred while processing: parse error**")

	summaryAt := strings.Index(md, "## Executive Summary")
	marketAt := strings.Index(md, "## Market Analysis")
	cashAt := strings.Index(md, "## Cash Flow Prediction")
	assert.True(t, summaryAt < marketAt && marketAt < cashAt)
}

func TestPDFRenderer_Render(t *testing.T) {
	out, err := PDFRenderer{}.Render(adapters.MapReportDomainToDocument(testReport()))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestFilesystemStore_Put(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFilesystemStore(filepath.Join(dir, "reports"), "/reports")
	require.NoError(t, err)

	ref, err := fs.Put(context.Background(), "a.md", "text/markdown", []byte("hello"))

	require.NoError(t, err)
	assert.Equal(t, "/reports/a.md", ref)
	data, err := os.ReadFile(filepath.Join(dir, "reports", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFilesystemStore_Put_ConcurrentDistinctArtifacts(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFilesystemStore(dir, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	names := []string{"one.md", "two.md", "three.md", "four.md"}
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fs.Put(context.Background(), name, "text/markdown", []byte(name))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, name, string(data))
	}
}

func TestS3Store_Put(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "reports-bucket" && *in.Key == "viability/a.pdf" &&
			*in.ContentType == "application/pdf" && string(body) == "pdf"
	})).Return(&s3.PutObjectOutput{}, nil)

	s := &S3Store{client: client, bucket: "reports-bucket", prefix: "viability"}
	ref, err := s.Put(context.Background(), "a.pdf", "application/pdf", []byte("pdf"))

	require.NoError(t, err)
	assert.Equal(t, "s3://reports-bucket/viability/a.pdf", ref)
	client.AssertExpectations(t)
}

func TestAzureBlobStore_Put(t *testing.T) {
	client := new(mockBlob)
	client.On("UploadBuffer", mock.Anything, "reports", "a.pdf", []byte("pdf"), mock.MatchedBy(func(o *azblob.UploadBufferOptions) bool {
		return o.HTTPHeaders != nil && *o.HTTPHeaders.BlobContentType == "application/pdf"
	})).Return(nil)

	s := &AzureBlobStore{client: client, accountURL: "https://acct.blob.core.windows.net/", container: "reports"}
	ref, err := s.Put(context.Background(), "a.pdf", "application/pdf", []byte("pdf"))

	require.NoError(t, err)
	assert.Equal(t, "https://acct.blob.core.windows.net/reports/a.pdf", ref)
}

func TestDocumentSink_Persist(t *testing.T) {
	report := testReport()
	name := "investment_analysis_20260314_092653_0b7c6f2e.md"

	t.Run("renders stores and records", func(t *testing.T) {
		st := new(mockStore)
		st.On("Put", mock.Anything, name, "text/markdown; charset=utf-8", mock.Anything).
			Return("/reports/"+name, nil)
		rec := new(mockRecorder)
		rec.On("Add", mock.Anything, mock.MatchedBy(func(r store.Report) bool {
			return r.ID == report.ID && r.Sections == 3 &&
				assert.ObjectsAreEqual([]string{"Cash Flow Prediction"}, r.FailedSections)
		})).Return(nil)

		artifact, err := New(MarkdownRenderer{}, st, rec).Persist(context.Background(), report)

		require.NoError(t, err)
		assert.Equal(t, "/reports/"+name, artifact.Reference)
		assert.Equal(t, name, artifact.Name)
		assert.Equal(t, "md", artifact.Format)
		rec.AssertExpectations(t)
	})

	t.Run("store failure is a sink failure", func(t *testing.T) {
		st := new(mockStore)
		st.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("denied"))

		_, err := New(MarkdownRenderer{}, st, nil).Persist(context.Background(), report)

		assert.ErrorIs(t, err, domain.ErrSink)
	})

	t.Run("catalog failure does not fail the report", func(t *testing.T) {
		st := new(mockStore)
		st.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("/reports/x", nil)
		rec := new(mockRecorder)
		rec.On("Add", mock.Anything, mock.Anything).Return(errors.New("db locked"))

		artifact, err := New(MarkdownRenderer{}, st, rec).Persist(context.Background(), report)

		require.NoError(t, err)
		assert.Equal(t, "/reports/x", artifact.Reference)
	})
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer("pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Format())

	_, err = NewRenderer("docx")
	assert.Error(t, err)
}
