package imgnamer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultFetchTimeout = 20 * time.Second
	maxPageBytes        = 4 << 20
)

// PageRenderer returns the fully rendered HTML of a page. Used for engines
// that build their result lists with JavaScript.
type PageRenderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// Client carries the HTTP plumbing shared by scraping providers.
type Client struct {
	HTTPClient    *http.Client // default: http.DefaultClient
	StealthClient *http.Client // optional: tried first for result pages
	UserAgent     string       // default: DefaultUserAgent
	Renderer      PageRenderer // optional: renders result pages instead of a plain GET
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

// upload posts an image as a multipart form without following redirects and
// returns the absolute URL from the Location header.
func (c Client) upload(ctx context.Context, endpoint string, fields map[string]string, fileField string, img uploadImage) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(fileField, img.Name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return "", err
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("User-Agent", c.userAgent())

	noRedirect := *c.httpClient()
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := noRedirect.Do(req) //nolint:gosec // endpoint is the configured engine URL
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", fmt.Errorf("upload to %s: status %d without redirect", endpoint, resp.StatusCode)
	}
	return resolveURL(endpoint, loc)
}

// fetchDocument loads a result page and parses it. The renderer is used when
// configured; otherwise the stealth client is tried first, falling back to the
// regular client.
func (c Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if c.Renderer != nil {
		html, err := c.Renderer.Render(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return goquery.NewDocumentFromReader(strings.NewReader(html))
	}

	if c.StealthClient != nil {
		if data, err := c.fetchPage(ctx, c.StealthClient, pageURL); err == nil {
			return goquery.NewDocumentFromReader(bytes.NewReader(data))
		}
	}
	data, err := c.fetchPage(ctx, c.httpClient(), pageURL)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(data))
}

func (c Client) fetchPage(ctx context.Context, client *http.Client, pageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := client.Do(req) //nolint:gosec // URL comes from the engine's own redirect
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", pageURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

// resolveURL resolves ref against base, as browsers do for Location headers.
func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

// withQuery returns rawURL with params set in its query string.
func withQuery(rawURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
