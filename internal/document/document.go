package document

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is an immutable, queryable view of one parsed page.
type Document struct {
	root *goquery.Selection
}

// Parse builds a Document from raw markup. It never fails: malformed markup
// degrades structurally and a parser error yields an empty document.
// Scripting is off, so <noscript> content is parsed as elements.
func Parse(markup []byte) *Document {
	node, err := html.ParseWithOptions(bytes.NewReader(markup), html.ParseOptionEnableScripting(false))
	if err != nil {
		node = &html.Node{Type: html.DocumentNode}
	}
	return &Document{root: goquery.NewDocumentFromNode(node).Selection}
}

// All returns every element with the given tag name in document order.
func (d *Document) All(tag string) []Element {
	return wrap(d.root.Find(tag))
}

// First returns the first element with the given tag name.
func (d *Document) First(tag string) (Element, bool) {
	sel := d.root.Find(tag).First()
	if sel.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: sel}, true
}

// Has reports whether at least one element with the tag exists.
func (d *Document) Has(tag string) bool {
	return d.root.Find(tag).Length() > 0
}

// Count returns the number of elements with the tag.
func (d *Document) Count(tag string) int {
	return d.root.Find(tag).Length()
}

// FindByAttr returns the first element with the tag whose attribute equals
// value exactly.
func (d *Document) FindByAttr(tag, attr, value string) (Element, bool) {
	for _, e := range d.All(tag) {
		if v, ok := e.Attr(attr); ok && v == value {
			return e, true
		}
	}
	return Element{}, false
}

// AllByAttr returns every element with the tag whose attribute equals value
// exactly.
func (d *Document) AllByAttr(tag, attr, value string) []Element {
	return d.Filter(tag, func(e Element) bool {
		v, ok := e.Attr(attr)
		return ok && v == value
	})
}

// WithAttr returns every element, of any tag, that carries the attribute.
func (d *Document) WithAttr(attr string) []Element {
	return d.Filter("*", func(e Element) bool {
		return e.HasAttr(attr)
	})
}

// Within returns the elements with the tag that descend from the first
// ancestorTag element. When no such ancestor exists the whole document is
// searched.
func (d *Document) Within(ancestorTag, tag string) []Element {
	scope := d.root.Find(ancestorTag).First()
	if scope.Length() == 0 {
		scope = d.root
	}
	return wrap(scope.Find(tag))
}

// WithRel returns the elements whose space-separated rel attribute contains
// token as a whole value. The comparison ignores case.
func (d *Document) WithRel(tag, token string) []Element {
	return d.Filter(tag, func(e Element) bool {
		for _, v := range e.RelTokens() {
			if strings.EqualFold(v, token) {
				return true
			}
		}
		return false
	})
}

// RelContains returns the elements having a rel value that contains
// substr, so "icon" matches both "icon" and "apple-touch-icon".
func (d *Document) RelContains(tag, substr string) []Element {
	substr = strings.ToLower(substr)
	return d.Filter(tag, func(e Element) bool {
		for _, v := range e.RelTokens() {
			if strings.Contains(strings.ToLower(v), substr) {
				return true
			}
		}
		return false
	})
}

// Filter returns the elements with the tag for which keep returns true.
// Use "*" to consider every element.
func (d *Document) Filter(tag string, keep func(Element) bool) []Element {
	var result []Element
	d.root.Find(tag).Each(func(_ int, s *goquery.Selection) {
		e := Element{sel: s}
		if keep(e) {
			result = append(result, e)
		}
	})
	return result
}

func wrap(sel *goquery.Selection) []Element {
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, Element{sel: s})
	})
	return elements
}
