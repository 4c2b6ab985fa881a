// Package main provides the entry point for the webpulse CLI.
//
// webpulse audits a web page for SEO, accessibility and performance
// problems, scores it, and suggests fixes. Results are kept in a local
// history database and can be served over HTTP or MCP.
//
// Usage:
//
//	webpulse scan <url>
//	webpulse history
//	webpulse serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
