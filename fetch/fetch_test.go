package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	s := NewService()
	body, err := s.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hello")
}

func TestServiceGetRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	s := NewService(WithRetries(3))
	body, err := s.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestServiceGetExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewService(WithRetries(2))
	_, err := s.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestServiceGetCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewService()
	_, err := s.Get(ctx, "http://127.0.0.1:0/never")
	require.Error(t, err)
}

func TestPDFProbeExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/papers/mofaa1.pdf":
			w.Header().Set("Content-Type", "application/pdf")
		case "/papers/notpdf.pdf":
			w.Header().Set("Content-Type", "text/html")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewPDFProbe()
	ctx := context.Background()

	assert.True(t, p.Exists(ctx, srv.URL+"/papers/mofaa1.pdf"))
	assert.False(t, p.Exists(ctx, srv.URL+"/papers/notpdf.pdf"), "wrong content type is unavailable")
	assert.False(t, p.Exists(ctx, srv.URL+"/papers/missing.pdf"))
	assert.False(t, p.Exists(ctx, "http://127.0.0.1:0/unreachable.pdf"), "transport failure degrades to false")
}

func TestDownloaderSave(t *testing.T) {
	content := strings.Repeat("x", 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte(content))
	}))
	defer srv.Close()

	d := NewDownloader()
	path := filepath.Join(t.TempDir(), "sub", "mofaa1.pdf")

	saved, err := d.Save(context.Background(), srv.URL+"/papers/mofaa1.pdf", path)
	require.NoError(t, err)
	assert.True(t, saved)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	// second save is skipped
	saved, err = d.Save(context.Background(), srv.URL+"/papers/mofaa1.pdf", path)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestDownloaderSaveRejectsTinyFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "20")
		w.Write([]byte("<html>missing</html>"))
	}))
	defer srv.Close()

	d := NewDownloader()
	path := filepath.Join(t.TempDir(), "tiny.pdf")

	saved, err := d.Save(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.NoFileExists(t, path)
}

func TestDownloaderSaveErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	d := NewDownloader()
	path := filepath.Join(t.TempDir(), "forbidden.pdf")

	_, err := d.Save(context.Background(), srv.URL, path)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestPageText(t *testing.T) {
	text, err := PageText([]byte("<html><body><h1>MOFAA1</h1>\n<p>Title</p></body></html>"))
	require.NoError(t, err)
	assert.Contains(t, text, "MOFAA1")
	assert.Contains(t, text, "Title")
	assert.NotContains(t, text, "<p>")
}
