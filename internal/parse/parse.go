// Package parse extracts offence records from scraped NSW Food Authority
// pages. Penalty notices and prosecutions are Drupal nodes; fields live in
// predictable field--name-* containers.
package parse

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	humanDate     = regexp.MustCompile(`(\d{1,2}\s+[A-Za-z]+\s+\d{4})`)
	charsetAttr   = regexp.MustCompile(`(?i)charset\s*=\s*["']?([a-zA-Z0-9_\-]+)`)
)

// Document parses scraped HTML into a goquery document, decoding the page's
// declared charset when it is not UTF-8.
func Document(data []byte) (*goquery.Document, error) {
	decoded, err := decode(data)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, eris.Wrap(err, "parse: read document")
	}
	return doc, nil
}

// decode returns a UTF-8 reader over data, honouring a meta charset
// declaration in the first kilobyte. Pages without one are assumed UTF-8.
func decode(data []byte) (io.Reader, error) {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}

	m := charsetAttr.FindSubmatch(head)
	if m == nil {
		return bytes.NewReader(data), nil
	}
	name := strings.ToLower(string(m[1]))
	if name == "utf-8" || name == "utf8" {
		return bytes.NewReader(data), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, eris.Wrapf(err, "parse: unsupported charset %q", name)
	}
	return enc.NewDecoder().Reader(bytes.NewReader(data)), nil
}

// fieldText returns the stripped text of the first element matching the
// selector, or "" when absent.
func fieldText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(sel.Text(), " "))
}

// fieldDatetime returns the datetime attribute of a time element under the
// selector, or "".
func fieldDatetime(doc *goquery.Document, selector string) string {
	val, _ := doc.Find(selector).First().Attr("datetime")
	return val
}

// parseHumanDate converts a date like "18 September 2023" to the dataset's
// ISO convention (noon UTC). Leading words ("On 18 September 2023") are
// ignored. Returns "" when no date is found.
func parseHumanDate(text string) string {
	if text == "" {
		return ""
	}
	cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	m := humanDate.FindString(cleaned)
	if m == "" {
		return ""
	}
	t, err := time.Parse("2 January 2006", m)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02") + "T12:00:00Z"
}

// joinAddress builds the denormalized full address the way the dataset
// does: non-empty parts joined on ", ".
func joinAddress(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
