package fetch

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/foodwatch-nsw/offences-cli/internal/parse"
)

var noticeHref = regexp.MustCompile(`/offences/penalty-notices/(\d+)`)

// NoticeLinks extracts the individual penalty notice URLs linked from the
// weekly listing page, absolute against baseURL, deduplicated in document
// order.
func NoticeLinks(page []byte, baseURL string) ([]string, error) {
	doc, err := parse.Document(page)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(baseURL, "/")
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !noticeHref.MatchString(href) {
			return
		}

		var full string
		switch {
		case strings.HasPrefix(href, "http"):
			full = href
		case strings.HasPrefix(href, "/"):
			full = base + href
		default:
			full = base + "/" + strings.TrimPrefix(href, "/")
		}

		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}
		links = append(links, full)
	})
	return links, nil
}
