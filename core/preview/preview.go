package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/patrickmn/go-cache"
)

const (
	// CacheTTL is how long a fetched image URL, or its absence, is remembered.
	CacheTTL = 6 * time.Hour

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0 Safari/537.36"
)

var preferredMeta = map[string]bool{
	"og:image":            true,
	"og:image:secure_url": true,
	"twitter:image":       true,
	"twitter:image:src":   true,
}

// Fetcher finds the preview image of a recipe page. It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	cache  *cache.Cache
	logger *slog.Logger
}

// NewFetcher creates a fetcher; a nil client uses one with a 10s timeout.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: client,
		cache:  cache.New(CacheTTL, time.Hour),
		logger: logger,
	}
}

// ImageURL returns the absolute URL of the page's preview image, or "" when the
// page has none, cannot be fetched or is not an http(s) URL.
func (f *Fetcher) ImageURL(ctx context.Context, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return ""
	}

	if cached, ok := f.cache.Get(pageURL); ok {
		return cached.(string)
	}

	image, err := f.fetch(ctx, pageURL)
	if err != nil {
		f.logger.Debug("Preview fetch failed", slog.String("url", pageURL), slog.String("error", err.Error()))
		if ctx.Err() != nil {
			return ""
		}
	}

	f.cache.Set(pageURL, image, cache.DefaultExpiration)
	return image
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept-Language", "en-US,en;q=0.9")

	response, err := f.client.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("unexpected status %d", response.StatusCode)
	}

	document, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return "", err
	}

	return findImage(document, response.Request.URL), nil
}

// findImage prefers social meta tags and falls back to the first usable img.
func findImage(document *goquery.Document, base *url.URL) string {
	image := ""
	document.Find("meta").EachWithBreak(func(_ int, meta *goquery.Selection) bool {
		name := meta.AttrOr("property", "")
		if name == "" {
			name = meta.AttrOr("name", "")
		}
		if !preferredMeta[strings.ToLower(name)] {
			return true
		}
		image = absolutize(meta.AttrOr("content", ""), base)
		return image == ""
	})
	if image != "" {
		return image
	}

	document.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		candidate := firstNonEmpty(img.AttrOr("data-src", ""), img.AttrOr("data-original", ""), img.AttrOr("src", ""))
		if candidate == "" {
			if srcset := img.AttrOr("srcset", ""); srcset != "" {
				if fields := strings.Fields(strings.Split(srcset, ",")[0]); len(fields) > 0 {
					candidate = fields[0]
				}
			}
		}
		image = absolutize(candidate, base)
		return image == ""
	})

	return image
}

func absolutize(candidate string, base *url.URL) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ""
	}
	if strings.HasPrefix(candidate, "//") {
		return base.Scheme + ":" + candidate
	}
	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		return candidate
	}

	reference, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	return base.ResolveReference(reference).String()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
