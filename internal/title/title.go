// Package title resolves a display title for a media page by scraping its
// HTML metadata. The orchestrator uses it as a fallback when the extraction
// provider's result carries no usable title.
package title

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tubetap/internal/httputil"
)

// maxPageBytes bounds how much of a watch page is read for metadata.
const maxPageBytes = 2 * 1024 * 1024

// Lookup fetches the page and returns its og:title, falling back to the
// <title> element with the site-name suffix stripped. The result is
// sanitized for filename use.
func Lookup(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	resp, err := httputil.Get(ctx, client, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	return fromDocument(doc), nil
}

func fromDocument(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if t := httputil.SanitizeTitle(og); t != "" {
			return t
		}
	}

	raw := doc.Find("title").First().Text()
	raw = strings.TrimSuffix(strings.TrimSpace(raw), " - YouTube")
	return httputil.SanitizeTitle(raw)
}
