// Package analyzer implements the rule-based page audits.
//
// Three analyzers share one contract:
//   - SEO: title, meta description, headings, canonical, Open Graph, robots
//     and the lang attribute
//   - Accessibility: alt text, viewport, charset, links, form labels,
//     buttons, deprecated tags and inline styles
//   - Performance: HTTPS, response time, document size, render-blocking
//     scripts, asset counts, lazy loading, inline CSS and favicon
//
// Each analyzer is stateless and reads only the immutable document and the
// fetch metadata in Input, so the pipeline runs them concurrently without
// locking. Running an analyzer twice on the same Input yields identical
// output.
//
// Design decision: The score formula lives in Score and every analyzer
// calls it. A per-analyzer scoring tweak would silently break the
// comparability of the three category scores.
//
// Issue titles are part of the contract with the suggest package, which
// matches remediation text on them. Keep their wording stable.
package analyzer
