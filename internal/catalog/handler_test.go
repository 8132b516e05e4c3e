// AngelaMos | 2026
// handler_test.go

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookshelf-api/internal/config"
	"github.com/carterperez-dev/bookshelf-api/internal/middleware"
	"github.com/carterperez-dev/bookshelf-api/internal/storage"
)

// stubAuth injects a fixed user id the way the real authenticator does
// after verifying a token.
func stubAuth(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type testEnv struct {
	svc     *Service
	store   *storage.Store
	routers map[string]chi.Router
	dir     string
}

func newTestEnv(t *testing.T, userIDs ...string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.New(config.StorageConfig{
		UploadDir:     dir,
		MaxUploadSize: 5 << 20,
		PublicPath:    "/media",
	})
	require.NoError(t, err)

	fs := newFakeStore()
	svc := NewService(&fakeAttrRepo{store: fs}, &fakeBookRepo{store: fs})
	svc.now = func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}

	handler := NewHandler(svc, store)

	routers := map[string]chi.Router{}
	for _, id := range userIDs {
		r := chi.NewRouter()
		handler.RegisterRoutes(r, stubAuth(id))
		routers[id] = r
	}

	return &testEnv{svc: svc, store: store, routers: routers, dir: dir}
}

func (e *testEnv) do(
	t *testing.T,
	userID, method, path string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.routers[userID].ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func TestTagCRUDOverHTTP(t *testing.T) {
	env := newTestEnv(t, alice)

	w := env.do(t, alice, http.MethodPost, "/tags", map[string]string{
		"name": "golang",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created AttributeResponse
	decodeBody(t, w, &created)
	assert.Equal(t, "golang", created.Name)

	w = env.do(t, alice, http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []AttributeResponse
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)

	path := fmt.Sprintf("/tags/%d", created.ID)

	w = env.do(t, alice, http.MethodPut, path, map[string]string{
		"name": "go",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var renamed AttributeResponse
	decodeBody(t, w, &renamed)
	assert.Equal(t, "go", renamed.Name)

	w = env.do(t, alice, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, alice, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForeignResourceReads404(t *testing.T) {
	env := newTestEnv(t, alice, bob)

	w := env.do(t, alice, http.MethodPost, "/authors", map[string]string{
		"name": "Donovan",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created AttributeResponse
	decodeBody(t, w, &created)

	path := fmt.Sprintf("/authors/%d", created.ID)

	foreign := env.do(t, bob, http.MethodGet, path, nil)
	missing := env.do(t, bob, http.MethodGet, "/authors/999999", nil)

	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	// Foreign and missing are indistinguishable from the response body.
	assert.JSONEq(t, missing.Body.String(), foreign.Body.String())
}

func TestBookLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t, alice)

	w := env.do(t, alice, http.MethodPost, "/tags", map[string]string{
		"name": "systems",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var tag AttributeResponse
	decodeBody(t, w, &tag)

	w = env.do(t, alice, http.MethodPost, "/books", map[string]any{
		"title": "The Practice of Programming",
		"pages": 267,
		"year":  1999,
		"price": 24.99,
		"tags":  []int64{tag.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created BookResponse
	decodeBody(t, w, &created)
	assert.Equal(t, []int64{tag.ID}, created.Tags)
	assert.JSONEq(
		t,
		`{"price": 24.99}`,
		fmt.Sprintf(`{"price": %s}`, mustMarshal(t, created.Price)),
	)

	// Detail embeds the tag object instead of its id.
	w = env.do(
		t, alice, http.MethodGet, fmt.Sprintf("/books/%d", created.ID), nil,
	)
	require.Equal(t, http.StatusOK, w.Code)

	var detail BookDetailResponse
	decodeBody(t, w, &detail)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "systems", detail.Tags[0].Name)

	// Full update without tags drops the link.
	w = env.do(
		t, alice, http.MethodPut, fmt.Sprintf("/books/%d", created.ID),
		map[string]any{
			"title": "The Practice of Programming",
			"pages": 267,
			"year":  1999,
			"price": 19.99,
		},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &detail)
	assert.Empty(t, detail.Tags)

	w = env.do(
		t, alice, http.MethodDelete, fmt.Sprintf("/books/%d", created.ID), nil,
	)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBookValidationErrorShape(t *testing.T) {
	env := newTestEnv(t, alice)

	w := env.do(t, alice, http.MethodPost, "/books", map[string]any{
		"year": 1200,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields"`
	}
	decodeBody(t, w, &body)

	assert.Contains(t, body.Fields, "title")
	assert.Contains(t, body.Fields, "year")
}

func TestBookFilterQueries(t *testing.T) {
	env := newTestEnv(t, alice)

	w := env.do(t, alice, http.MethodPost, "/tags", map[string]string{
		"name": "fiction",
	})
	var tag AttributeResponse
	decodeBody(t, w, &tag)

	w = env.do(t, alice, http.MethodPost, "/books", map[string]any{
		"title": "Tagged",
		"pages": 100,
		"year":  2000,
		"price": 10,
		"tags":  []int64{tag.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, alice, http.MethodPost, "/books", map[string]any{
		"title": "Untagged",
		"pages": 100,
		"year":  2000,
		"price": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var books []BookResponse

	w = env.do(
		t, alice, http.MethodGet, fmt.Sprintf("/books?tags=%d", tag.ID), nil,
	)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &books)
	require.Len(t, books, 1)
	assert.Equal(t, "Tagged", books[0].Title)

	// A present-but-empty parameter is the same as an absent one: the
	// full unfiltered listing.
	w = env.do(t, alice, http.MethodGet, "/books?tags=", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &books)
	assert.Len(t, books, 2)

	w = env.do(t, alice, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &books)
	assert.Len(t, books, 2)

	// 0 is a well-formed id that matches no row, not a bad token.
	w = env.do(t, alice, http.MethodGet, "/books?tags=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &books)
	assert.Empty(t, books)

	w = env.do(t, alice, http.MethodGet, "/books?tags=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignedOnlyQuery(t *testing.T) {
	env := newTestEnv(t, alice)

	w := env.do(t, alice, http.MethodPost, "/authors", map[string]string{
		"name": "Used",
	})
	var used AttributeResponse
	decodeBody(t, w, &used)

	w = env.do(t, alice, http.MethodPost, "/authors", map[string]string{
		"name": "Unused",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, alice, http.MethodPost, "/books", map[string]any{
		"title":   "By Used",
		"pages":   1,
		"year":    2020,
		"price":   1,
		"authors": []int64{used.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var authors []AttributeResponse

	w = env.do(t, alice, http.MethodGet, "/authors?assigned_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &authors)
	require.Len(t, authors, 1)
	assert.Equal(t, "Used", authors[0].Name)

	w = env.do(t, alice, http.MethodGet, "/authors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &authors)
	assert.Len(t, authors, 2)
}

// Smallest valid PNG: signature, IHDR, zero-length IDAT, IEND.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func multipartImage(
	t *testing.T,
	field, filename string,
	data []byte,
) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf, writer.FormDataContentType()
}

func TestUploadCover(t *testing.T) {
	env := newTestEnv(t, alice)

	w := env.do(t, alice, http.MethodPost, "/books", map[string]any{
		"title": "Covered",
		"pages": 1,
		"year":  2020,
		"price": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created BookResponse
	decodeBody(t, w, &created)

	body, contentType := multipartImage(t, "image", "cover.png", pngBytes)
	req := httptest.NewRequest(
		http.MethodPost, fmt.Sprintf("/books/%d/image", created.ID), body,
	)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.routers[alice].ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BookImageResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, created.ID, resp.ID)
	require.NotNil(t, resp.Image)
	assert.Contains(t, *resp.Image, "/media/")

	// The file landed on disk under its sniffed extension.
	entries, err := os.ReadDir(env.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))
}

func TestUploadCoverRejectsNonImage(t *testing.T) {
	env := newTestEnv(t, alice)

	w := env.do(t, alice, http.MethodPost, "/books", map[string]any{
		"title": "No Cover",
		"pages": 1,
		"year":  2020,
		"price": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created BookResponse
	decodeBody(t, w, &created)

	body, contentType := multipartImage(
		t, "image", "notes.txt", []byte("plain text, not an image"),
	)
	req := httptest.NewRequest(
		http.MethodPost, fmt.Sprintf("/books/%d/image", created.ID), body,
	)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.routers[alice].ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing was stored.
	entries, err := os.ReadDir(env.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}
