package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var whitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// NormalizeText collapses runs of whitespace into a single space, strips
// non-printable characters and trims the result.
func NormalizeText(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	s = removeNonPrintable(s)
	return strings.Trim(s, " ")
}

type Anchor struct {
	Name string
	// Href is the href attribute exactly as it appears on the page.
	Href string
	// Url is Href resolved against the page it was found on, nil if Href is not a valid url.
	Url *url.URL
}

// GetAnchors returns the text and link of each node in `sel`, `base` is used to
// resolve relative links and may be nil.
func GetAnchors(base *url.URL, sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		var resolved *url.URL
		link, err := url.Parse(href)
		if err == nil {
			resolved = link
			if base != nil {
				resolved = base.ResolveReference(link)
			}
		}

		anchors = append(anchors, Anchor{
			Name: NormalizeText(GetText(n)),
			Href: href,
			Url:  resolved,
		})
	}
	return anchors
}

// GetTexts returns the normalized text of each node in `sel`.
func GetTexts(sel *goquery.Selection) []string {
	texts := make([]string, len(sel.Nodes))
	for i, n := range sel.Nodes {
		texts[i] = NormalizeText(GetText(n))
	}
	return texts
}

// TableToMap reads a two column table where the first cell of each row is a
// label and the second one is its value. Rows with less than two cells are skipped.
func TableToMap(table *goquery.Selection) map[string]string {
	out := map[string]string{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("th, td")
		if cells.Length() < 2 {
			return
		}
		key := NormalizeText(cells.Eq(0).Text())
		if key == "" {
			return
		}
		out[key] = NormalizeText(cells.Eq(1).Text())
	})
	return out
}
