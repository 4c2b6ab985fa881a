package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is a read-only handle to one element of a Document.
// The zero value represents "no element" and answers every query with an
// empty result.
type Element struct {
	sel *goquery.Selection
}

// Tag returns the lowercase tag name.
func (e Element) Tag() string {
	if e.sel == nil {
		return ""
	}
	return goquery.NodeName(e.sel)
}

// Attr returns the attribute value and whether the attribute is present.
// A present attribute may have an empty value.
func (e Element) Attr(name string) (string, bool) {
	if e.sel == nil {
		return "", false
	}
	return e.sel.Attr(name)
}

// AttrOr returns the attribute value, or def when the attribute is absent.
func (e Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// HasAttr reports whether the attribute is present.
func (e Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Text returns the concatenated descendant text with surrounding
// whitespace removed.
func (e Element) Text() string {
	return strings.TrimSpace(e.RawText())
}

// RawText returns the concatenated descendant text unmodified.
func (e Element) RawText() string {
	if e.sel == nil {
		return ""
	}
	return e.sel.Text()
}

// HasDescendant reports whether any descendant has the tag.
func (e Element) HasDescendant(tag string) bool {
	if e.sel == nil {
		return false
	}
	return e.sel.Find(tag).Length() > 0
}

// RelTokens splits the rel attribute into its space-separated values.
func (e Element) RelTokens() []string {
	rel, _ := e.Attr("rel")
	return strings.Fields(rel)
}
