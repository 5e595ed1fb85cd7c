package imgnamer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	googleUploadURL  = "https://encrypted.google.com/searchbyimage/upload"
	googlePageSize   = 10
	googleMaxPages   = 5
	defaultNumResult = 5
)

// dimensionsRe matches "1920 × 1080" (Google) and "1920x1080" (TinEye).
var dimensionsRe = regexp.MustCompile(`(\d+)\s*[×xX]\s*(\d+)`)

// ParseDimensions extracts the first "W × H" pair from text. Unparseable or
// missing values yield the zero Dimensions.
func ParseDimensions(text string) Dimensions {
	m := dimensionsRe.FindStringSubmatch(text)
	if m == nil {
		return Dimensions{}
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return Dimensions{}
	}
	return Dimensions{Width: w, Height: h}
}

// GoogleProvider scrapes the "pages that include matching images" block of a
// Google reverse-image search.
type GoogleProvider struct {
	Client
	UploadURL string // default: Google's searchbyimage upload endpoint
}

var (
	_ SearchProvider = (*GoogleProvider)(nil)
	_ BestGuesser    = (*GoogleProvider)(nil)
)

func (g *GoogleProvider) Name() string { return "google" }

// Search uploads the image once, then queries each preferred site with
// q=<site>. Site queries are best-effort: a failing site is skipped. When no
// site produced results (or none were given) the unfiltered result pages are
// used.
func (g *GoogleProvider) Search(ctx context.Context, imagePath string, opts SearchOpts) ([]SearchResult, error) {
	resultURL, err := g.uploadImage(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	var out []SearchResult
	for _, site := range opts.Sites {
		params := mergeParams(opts.Params, map[string]string{"q": site})
		res, err := g.collect(ctx, resultURL, params, opts.num())
		if err != nil {
			slog.Debug("imgnamer: site search failed", "provider", g.Name(), "site", site, "error", err.Error())
			continue
		}
		out = append(out, res...)
	}
	if len(out) > 0 {
		return out, nil
	}
	return g.collect(ctx, resultURL, opts.Params, opts.num())
}

// BestGuess returns Google's own suggested search for the image, or "" when
// the result page carries none.
func (g *GoogleProvider) BestGuess(ctx context.Context, imagePath string) (string, error) {
	resultURL, err := g.uploadImage(ctx, imagePath)
	if err != nil {
		return "", err
	}
	doc, err := g.fetchDocument(ctx, resultURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("a._gUb").First().Text()), nil
}

func (g *GoogleProvider) uploadImage(ctx context.Context, imagePath string) (string, error) {
	img, err := prepareUpload(imagePath)
	if err != nil {
		return "", err
	}
	endpoint := g.UploadURL
	if endpoint == "" {
		endpoint = googleUploadURL
	}
	resultURL, err := g.upload(ctx, endpoint, map[string]string{"image_content": ""}, "encoded_image", img)
	if err != nil {
		return "", fmt.Errorf("google upload: %w", err)
	}
	return resultURL, nil
}

// collect walks result pages until num results were gathered or a page has
// no result block.
func (g *GoogleProvider) collect(ctx context.Context, resultURL string, params map[string]string, num int) ([]SearchResult, error) {
	var out []SearchResult
	for page := 0; page < googleMaxPages && len(out) < num; page++ {
		pageURL, err := withQuery(resultURL, mergeParams(params, map[string]string{
			"start": strconv.Itoa(page * googlePageSize),
		}))
		if err != nil {
			return nil, err
		}
		doc, err := g.fetchDocument(ctx, pageURL)
		if err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, err
		}
		found := parseGoogleResults(doc, num-len(out))
		if len(found) == 0 {
			break
		}
		out = append(out, found...)
	}
	return out, nil
}

// parseGoogleResults extracts up to limit results from the last ._NId block.
func parseGoogleResults(doc *goquery.Document, limit int) []SearchResult {
	var out []SearchResult
	blocks := doc.Find("._NId")
	if blocks.Length() == 0 {
		return nil
	}
	blocks.Last().Find(".rc").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		snippet := s.Find(".st").First()
		dimNode := snippet.Find(".f").First()
		dims := ParseDimensions(dimNode.Text())
		dimNode.Remove()

		out = append(out, SearchResult{
			Dimensions: dims,
			Title:      strings.TrimSpace(s.Find("h3.r").First().Text()),
			Location:   strings.TrimSpace(s.Find("cite._Rm").First().Text()),
			Snippet:    strings.TrimSpace(snippet.Text()),
			Provider:   "google",
		})
		return len(out) < limit
	})
	return out
}

func mergeParams(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
