package webui

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagesearch/common/client"
	"imagesearch/common/models"
	"imagesearch/common/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBackend struct {
	calls    int
	lastFile client.Upload
	err      error
}

func (b *stubBackend) ClassifyImage(ctx context.Context, img client.Upload) (*models.ClassificationResult, error) {
	b.calls++
	b.lastFile = img
	if b.err != nil {
		return nil, b.err
	}
	return &models.ClassificationResult{TopPredictions: []models.Prediction{{Category: "cat", Confidence: 0.97}}}, nil
}

func (b *stubBackend) SearchSimilarImages(ctx context.Context, img client.Upload) (*models.SimilarImagesResult, error) {
	b.calls++
	b.lastFile = img
	if b.err != nil {
		return nil, b.err
	}
	return &models.SimilarImagesResult{
		Category:      "animals",
		SimilarImages: []models.ImageEntry{{URL: "https://img.test/u1.jpg", Description: "d1"}},
	}, nil
}

func (b *stubBackend) SearchImagesByText(ctx context.Context, query string) ([]models.ImageEntry, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return []models.ImageEntry{{URL: "https://img.test/u2.jpg", Description: "d2"}}, nil
}

type browser struct {
	t      *testing.T
	router http.Handler
	cookie *http.Cookie
}

func newBrowser(t *testing.T, backend session.Backend) *browser {
	srv := NewServer(backend, NewStore(time.Hour, 10), nil)
	return &browser{t: t, router: srv.NewRouter()}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			b.cookie = c
		}
	}
	return w
}

func (b *browser) page() string {
	w := b.do(httptest.NewRequest("GET", "/", nil))
	require.Equal(b.t, http.StatusOK, w.Code)
	return w.Body.String()
}

func (b *browser) postForm(path string, values url.Values) {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := b.do(req)
	require.Equal(b.t, http.StatusSeeOther, w.Code)
}

func (b *browser) postImage(path string, data []byte) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "cat.png")
	require.NoError(b.t, err)
	_, err = part.Write(data)
	require.NoError(b.t, err)
	require.NoError(b.t, mw.Close())

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := b.do(req)
	require.Equal(b.t, http.StatusSeeOther, w.Code)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n0000")

func TestIndexRendersEmptyPage(t *testing.T) {
	b := newBrowser(t, &stubBackend{})
	body := b.page()

	assert.Contains(t, body, "Image Search Application")
	assert.NotContains(t, body, "Classification Results")
	assert.NotContains(t, body, "Search Results:")
	require.NotNil(t, b.cookie)
}

func TestClassifyWithoutFileAlerts(t *testing.T) {
	backend := &stubBackend{}
	b := newBrowser(t, backend)
	b.page()

	b.postForm("/classify", url.Values{})
	body := b.page()

	assert.Equal(t, 0, backend.calls)
	assert.Contains(t, body, session.MsgSelectImage)
	assert.NotContains(t, b.page(), session.MsgSelectImage, "alerts are shown once")
}

func TestClassifyFlow(t *testing.T) {
	backend := &stubBackend{}
	b := newBrowser(t, backend)

	b.postImage("/classify", pngBytes)
	body := b.page()

	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "cat.png", backend.lastFile.Name)
	assert.Equal(t, "image/png", backend.lastFile.ContentType)
	assert.Equal(t, pngBytes, backend.lastFile.Data)
	assert.Contains(t, body, "<li>cat: 97.00%</li>")
	assert.Contains(t, body, "data:image/png;base64,")
}

func TestUploadThenSimilar(t *testing.T) {
	backend := &stubBackend{}
	b := newBrowser(t, backend)

	b.postImage("/upload", pngBytes)
	assert.Equal(t, 0, backend.calls)

	b.postForm("/similar", url.Values{})
	body := b.page()

	assert.Equal(t, 1, backend.calls)
	assert.Contains(t, body, "Similar Images in Category: animals")
	assert.Contains(t, body, `src="https://img.test/u1.jpg"`)
	assert.Contains(t, body, "<p>d1</p>")
}

func TestTextSearchFlow(t *testing.T) {
	backend := &stubBackend{}
	b := newBrowser(t, backend)

	b.postForm("/search", url.Values{"query": {""}})
	assert.Contains(t, b.page(), session.MsgEnterQuery)
	assert.Equal(t, 0, backend.calls)

	b.postForm("/search", url.Values{"query": {"cats <b>"}})
	body := b.page()
	assert.Equal(t, 1, backend.calls)
	assert.Contains(t, body, "Search Results:")
	assert.Contains(t, body, "<p>d2</p>")
	assert.Contains(t, body, `value="cats &lt;b&gt;"`)
}

func TestBackendFailureAlerts(t *testing.T) {
	backend := &stubBackend{err: errors.New("relay down")}
	b := newBrowser(t, backend)

	b.postImage("/classify", pngBytes)
	body := b.page()

	assert.Contains(t, body, session.MsgClassificationFailed)
	assert.NotContains(t, body, "Classification Results")
}

func TestClassifyOversizedUploadRejected(t *testing.T) {
	backend := &stubBackend{}
	b := newBrowser(t, backend)

	b.postImage("/classify", bytes.Repeat([]byte{0xff}, MaxUploadBytes+2<<20))
	body := b.page()

	assert.Equal(t, 0, backend.calls)
	assert.Contains(t, body, "Could not read the selected image")
	assert.NotContains(t, body, "data:image/png;base64,")
}

func TestEmptyClassificationShowsHeading(t *testing.T) {
	state := session.State{}.WithClassification(&models.ClassificationResult{TopPredictions: []models.Prediction{}})

	data := render(state, nil)
	assert.True(t, data.ClassificationShown)
	assert.Empty(t, data.Classification)

	var page bytes.Buffer
	require.NoError(t, pageTemplate.ExecuteTemplate(&page, "index", data))
	assert.Contains(t, page.String(), "Classification Results:")

	page.Reset()
	require.NoError(t, pageTemplate.ExecuteTemplate(&page, "index", render(session.State{}, nil)))
	assert.NotContains(t, page.String(), "Classification Results:")
}

func TestSessionsAreSeparate(t *testing.T) {
	backend := &stubBackend{}
	srv := NewServer(backend, NewStore(time.Hour, 10), nil)
	router := srv.NewRouter()

	alice := &browser{t: t, router: router}
	bob := &browser{t: t, router: router}

	alice.postImage("/classify", pngBytes)
	assert.Contains(t, alice.page(), "cat: 97.00%")
	assert.NotContains(t, bob.page(), "cat: 97.00%")
	assert.NotEqual(t, alice.cookie.Value, bob.cookie.Value)
}

func TestRender(t *testing.T) {
	state := session.State{}.
		WithSimilar(&models.SimilarImagesResult{Category: "c", SimilarImages: []models.ImageEntry{{URL: "u1", Description: "d1"}}}).
		WithTextResults([]models.ImageEntry{})

	data := render(state, []string{"hello"})
	assert.Equal(t, []string{"hello"}, data.Alerts)
	assert.True(t, data.SimilarShown)
	assert.Equal(t, []Thumbnail{{URL: "u1", Alt: "Similar 0", Description: "d1"}}, data.Similar)
	assert.True(t, data.TextShown)
	assert.Empty(t, data.TextResults)
	assert.Empty(t, data.Preview)
}

func TestSweepStops(t *testing.T) {
	store, clock := newTestStore(time.Minute, 10)
	store.Put("a", &Session{})
	clock.advance(2 * time.Minute)

	srv := NewServer(&stubBackend{}, store, nil)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		srv.Sweep(time.Millisecond, stop)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	close(stop)
	<-done
}
