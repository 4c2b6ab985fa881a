// Package suggest attaches remediation advice to audit issues.
//
// The Static suggester matches the lowercased issue title against an ordered
// table of title fragments. The first fragment found in the title wins, so
// entries earlier in the table shadow later, more specific ones. Issues no
// entry matches get a fallback sentence keyed on severity.
//
// The Claude suggester asks the Anthropic Messages API for advice tailored
// to the issue and falls back to the static table on any failure.
//
// Design decision: The table is a slice, not a map. A title may contain
// more than one fragment, and map iteration order would make the winning
// entry random.
package suggest
