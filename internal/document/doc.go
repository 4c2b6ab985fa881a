// Package document provides the read-only parsed page model the analyzers
// query.
//
// A Document is built once per scan from the fetched markup and shared by
// reference across all analyzers. It exposes lookups by tag, attribute and
// rel token and never exposes mutation, so concurrent readers need no
// locking.
//
// Design decision: We parse with golang.org/x/net/html and hand the tree to
// goquery instead of calling goquery.NewDocumentFromReader directly. The
// html5 tree builder never fails on malformed markup; it auto-closes tags
// and synthesizes <html>, <head> and <body>. Parse therefore has no error
// return, and the only failure path (a reader error) degrades to an empty
// document.
//
// # Usage
//
//	doc := document.Parse(markup)
//	if title, ok := doc.First("title"); ok {
//		fmt.Println(title.Text())
//	}
package document
