package imgnamer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("blocked")
}

type fakeRenderer struct {
	html string
	err  error
	urls []string
}

func (f *fakeRenderer) Render(_ context.Context, pageURL string) (string, error) {
	f.urls = append(f.urls, pageURL)
	return f.html, f.err
}

func newPageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDocument_StealthFallsBackToRegular(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t, `<html><head><title>ok</title></head></html>`)
	c := Client{
		HTTPClient:    srv.Client(),
		StealthClient: &http.Client{Transport: failingTransport{}},
	}
	doc, err := c.fetchDocument(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetchDocument: %v", err)
	}
	if got := doc.Find("title").Text(); got != "ok" {
		t.Errorf("title = %q, want ok", got)
	}
}

func TestFetchDocument_StealthPreferred(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t, `<p>stealth</p>`)
	c := Client{
		HTTPClient:    &http.Client{Transport: failingTransport{}},
		StealthClient: srv.Client(),
	}
	doc, err := c.fetchDocument(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetchDocument: %v", err)
	}
	if got := doc.Find("p").Text(); got != "stealth" {
		t.Errorf("p = %q", got)
	}
}

func TestFetchDocument_Renderer(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{html: `<div class="x">rendered</div>`}
	c := Client{HTTPClient: &http.Client{Transport: failingTransport{}}, Renderer: r}
	doc, err := c.fetchDocument(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find(".x").Text() != "rendered" {
		t.Error("renderer output not parsed")
	}
	if len(r.urls) != 1 || r.urls[0] != "https://example.com/page" {
		t.Errorf("renderer urls = %v", r.urls)
	}

	r.err = errors.New("chrome crashed")
	if _, err := c.fetchDocument(context.Background(), "https://example.com/page"); err == nil {
		t.Error("renderer error was swallowed")
	}
}

func TestFetchDocument_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := (Client{HTTPClient: srv.Client()}).fetchDocument(context.Background(), srv.URL); err == nil {
		t.Error("fetchDocument succeeded on 429")
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, ref, want string
	}{
		{"https://tineye.com/search", "/search/abc", "https://tineye.com/search/abc"},
		{"https://google.com/upload", "https://www.google.com/search?tbs=x", "https://www.google.com/search?tbs=x"},
		{"https://a.com/x/y", "z?q=1", "https://a.com/x/z?q=1"},
	}
	for _, tc := range tests {
		got, err := resolveURL(tc.base, tc.ref)
		if err != nil || got != tc.want {
			t.Errorf("resolveURL(%q, %q) = %q, %v; want %q", tc.base, tc.ref, got, err, tc.want)
		}
	}
}

func TestWithQuery(t *testing.T) {
	t.Parallel()

	got, err := withQuery("https://g.com/search?tbs=sbi", map[string]string{"start": "10", "q": "artstation.com"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://g.com/search?q=artstation.com&start=10&tbs=sbi"; got != want {
		t.Errorf("withQuery = %q, want %q", got, want)
	}

	got, _ = withQuery("https://g.com/search?tbs=sbi", nil)
	if got != "https://g.com/search?tbs=sbi" {
		t.Errorf("withQuery(nil) = %q", got)
	}
}
