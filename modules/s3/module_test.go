package s3_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/specialistvlad/pixelgrid/modules/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bucket struct {
	mu          sync.Mutex
	method      string
	contentType string
	body        []byte
	status      int
}

func (b *bucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.method = r.Method
	b.contentType = r.Header.Get("Content-Type")
	b.body, _ = io.ReadAll(r.Body)
	w.WriteHeader(b.status)
}

func uploadContext(t *testing.T, url, format string) *operation.ExecutionContext {
	t.Helper()
	return operation.NewExecutionContext(testutil.Context(t), "upload",
		map[string]value.Value{"image": value.ImageValue(testutil.Gradient(8, 8, 3))},
		map[string]value.Value{
			"upload_url": value.String(url),
			"format":     value.String(format),
			"timeout":    value.String("5s"),
		})
}

func TestOnRunUploadImage(t *testing.T) {
	b := &bucket{status: http.StatusOK}
	srv := httptest.NewServer(b)
	defer srv.Close()

	ec := uploadContext(t, srv.URL+"/out.png?X-Amz-Signature=abc", "png")
	require.NoError(t, s3.OnRunUploadImage(ec))

	assert.Equal(t, http.MethodPut, b.method)
	assert.Equal(t, "image/png", b.contentType)
	require.NotEmpty(t, b.body)
	assert.Equal(t, []byte("\x89PNG"), b.body[:4])

	out := ec.Outputs()
	assert.True(t, out["status"].Equal(value.String("200 OK")))
	assert.True(t, out["bytes"].Equal(value.Int(int64(len(b.body)))))
}

func TestOnRunUploadImage_Rejected(t *testing.T) {
	b := &bucket{status: http.StatusForbidden}
	srv := httptest.NewServer(b)
	defer srv.Close()

	err := s3.OnRunUploadImage(uploadContext(t, srv.URL, "jpeg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, "image/jpeg", b.contentType)
}

func TestUploadImage_FormatParameter(t *testing.T) {
	op, err := testutil.Registry(t).Create("upload_image")
	require.NoError(t, err)

	p, ok := op.Metadata().Parameter("format")
	require.True(t, ok)
	assert.NoError(t, p.Check(value.String("tiff")))
	assert.Error(t, p.Check(value.String("webp")))

	err = op.Validate(&operation.ValidationContext{
		Node:   "upload",
		Params: map[string]value.Value{"upload_url": value.String("")},
	})
	assert.ErrorContains(t, err, "upload_url")
}
