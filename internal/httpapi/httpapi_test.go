package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshift/adrestreamer/internal/adlibrary"
)

func TestAcceptsAAC(t *testing.T) {
	cases := []struct {
		header string
		want   bool
	}{
		{"", true},
		{"*/*", true},
		{"audio/*", true},
		{"audio/aac", true},
		{"text/html, audio/aac;q=0.9", true},
		{"text/html", false},
		{"video/mp4", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, acceptsAAC(tc.header), "header %q", tc.header)
	}
}

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	library, err := adlibrary.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { library.Close() })
	return Deps{Library: library}
}

func TestAdCRUDLifecycle(t *testing.T) {
	d := newTestDeps(t)
	mux := NewMux(d)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("name", "station-id"))
	part, err := writer.CreateFormFile("file", "station-id.aac")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-encoded-audio"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	uploadReq := httptest.NewRequest(http.MethodPost, "/admin/ads", &body)
	uploadReq.Header.Set("Content-Type", writer.FormDataContentType())
	uploadRec := httptest.NewRecorder()
	mux.ServeHTTP(uploadRec, uploadReq)
	require.Equal(t, http.StatusOK, uploadRec.Code)

	listRec := httptest.NewRecorder()
	mux.ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/admin/ads", nil))
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), "station-id")

	items, err := d.Library.List()
	require.NoError(t, err)
	require.Len(t, items, 1)

	deleteRec := httptest.NewRecorder()
	deleteReq := httptest.NewRequest(http.MethodDelete, "/admin/ads/"+items[0].ID.String(), nil)
	mux.ServeHTTP(deleteRec, deleteReq)
	assert.Equal(t, http.StatusNoContent, deleteRec.Code)

	items, err = d.Library.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPlayRequiresSource(t *testing.T) {
	d := newTestDeps(t)
	mux := NewMux(d)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/play", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlayRejectsIncompatibleAccept(t *testing.T) {
	d := newTestDeps(t)
	mux := NewMux(d)

	req := httptest.NewRequest(http.MethodGet, "/play?source=http://example.invalid/playlist.m3u8", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}
