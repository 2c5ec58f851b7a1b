package demo

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	shareDescriptionLength = 70
	defaultShareTitle      = "I made this website in ~15 seconds"
)

// Share is the metadata used for link previews of a page.
type Share struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	PageURL     string `json:"pageUrl"`
}

var plainText = bluemonday.StrictPolicy()

func buildShare(baseURL, id, prompt, page string) Share {
	base := strings.TrimRight(baseURL, "/")
	desc := Truncate(html.UnescapeString(plainText.Sanitize(prompt)), shareDescriptionLength)

	title := pageTitle(page)
	if title == "" {
		title = defaultShareTitle
	}

	return Share{
		Title:       title,
		Description: desc,
		ImageURL:    base + "/api/og?prompt=" + url.QueryEscape(desc),
		PageURL:     base + "/demo/" + url.PathEscape(id),
	}
}

// Truncate shortens s to at most n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-3])) + "…"
}

func pageTitle(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}
	return findTitle(doc)
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
