package imgnamer

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const tineyeUploadURL = "https://tineye.com/search"

// TinEyeProvider scrapes TinEye match rows. TinEye has no site filter, so
// SearchOpts.Sites is ignored.
type TinEyeProvider struct {
	Client
	UploadURL string // default: TinEye's search endpoint
}

var _ SearchProvider = (*TinEyeProvider)(nil)

func (p *TinEyeProvider) Name() string { return "tineye" }

// Search uploads the image and parses up to opts.Num match rows.
func (p *TinEyeProvider) Search(ctx context.Context, imagePath string, opts SearchOpts) ([]SearchResult, error) {
	img, err := prepareUpload(imagePath)
	if err != nil {
		return nil, err
	}
	endpoint := p.UploadURL
	if endpoint == "" {
		endpoint = tineyeUploadURL
	}
	// TinEye rejects uploads whose part has no filename.
	resultURL, err := p.upload(ctx, endpoint, nil, "image", img)
	if err != nil {
		return nil, fmt.Errorf("tineye upload: %w", err)
	}
	pageURL, err := withQuery(resultURL, opts.Params)
	if err != nil {
		return nil, err
	}
	doc, err := p.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return parseTinEyeResults(doc, opts.num()), nil
}

func parseTinEyeResults(doc *goquery.Document, limit int) []SearchResult {
	var out []SearchResult
	doc.Find("div.match-row").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		details := s.Find(".match-details").First()
		link := details.Find(".image-link").First()
		location, _ := link.NextAllFiltered("p").Eq(1).Find("a").First().Attr("href")

		out = append(out, SearchResult{
			Dimensions: ParseDimensions(s.Find(".match-thumb p").First().Text()),
			Title:      strings.TrimSpace(link.Find("a").First().Text()),
			Location:   strings.TrimSpace(location),
			Snippet:    strings.TrimSpace(details.Find(".match").First().Text()),
			Provider:   "tineye",
		})
		return len(out) < limit
	})
	return out
}
