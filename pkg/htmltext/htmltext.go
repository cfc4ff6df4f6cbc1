// Package htmltext turns an email view's HTML into the plain text a reader
// sees, so URLs can be found in it.
package htmltext

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSelector matches the message body container of the webmail client.
const DefaultSelector = "div.a3s"

//nolint: gochecknoglobals
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Fieldset: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true, atom.Tr: true,
	atom.Td: true, atom.Th: true, atom.Ul: true,
}

//nolint: gochecknoglobals
var hiddenElements = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

// Extract returns the visible text of the first element matching selector
// that has any, or of the whole body when none does. An empty selector uses
// DefaultSelector. Lines are trimmed and blank lines dropped.
func Extract(r io.Reader, selector string) (string, error) {
	doc, err := parse(r)
	if err != nil {
		return "", err
	}
	if text := matchText(doc, selector); text != "" {
		return text, nil
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return nodeText(doc.Get(0)), nil
	}

	return nodeText(body.Get(0)), nil
}

// ExtractMatch is Extract without the body fallback: a document where no
// element matching selector has text yields "".
func ExtractMatch(r io.Reader, selector string) (string, error) {
	doc, err := parse(r)
	if err != nil {
		return "", err
	}

	return matchText(doc, selector), nil
}

func parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse html: %w", err)
	}

	return doc, nil
}

func matchText(doc *goquery.Document, selector string) string {
	if selector == "" {
		selector = DefaultSelector
	}
	for _, n := range doc.Find(selector).Nodes {
		if text := nodeText(n); text != "" {
			return text
		}
	}

	return ""
}

// ExtractString is Extract over an in-memory document.
func ExtractString(s, selector string) (string, error) {
	return Extract(strings.NewReader(s), selector)
}

// ExtractMatchString is ExtractMatch over an in-memory document.
func ExtractMatchString(s, selector string) (string, error) {
	return ExtractMatch(strings.NewReader(s), selector)
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	render(&sb, n)

	lines := strings.Split(sb.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}

	return strings.Join(out, "\n")
}

func render(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if hiddenElements[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			sb.WriteByte('\n')
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}
