// Package pipeline runs one page audit as a sequence of steps.
//
// A scan passes through five steps: fetch, parse, analyze, enrich and
// aggregate. Each step reads and extends a ScanState owned by that scan
// alone. The Orchestrator builds a fresh Pipeline for every scan, so no
// state is shared between scans.
//
// Design decision: We use a pipeline of steps instead of direct function
// calls because:
// 1. Every step is logged and cancelled the same way
// 2. Tests can run a partial pipeline against a prepared state
// 3. A failed fetch halts the scan without the later steps knowing about it
//
// The fetch is the only step bounded by a wall-clock timeout. Once the
// markup is in hand the analysis always runs to completion. Nothing is
// retried; BatchProcessor scans several URLs with bounded concurrency
// using errgroup.
package pipeline
