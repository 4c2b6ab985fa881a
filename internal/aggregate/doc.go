// Package aggregate combines the three analyzer results into report fields.
//
// Issues are merged in the fixed order SEO, Accessibility, Performance and
// are never re-sorted here; renderers that want severity order sort a copy.
// The overall score is the rounded mean of the three category scores, and
// the executive summary names the quality tier and the weakest category.
package aggregate
