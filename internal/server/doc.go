// Package server exposes the audit pipeline and the scan history over a
// JSON HTTP API.
//
// Routes:
//
//	POST   /api/scan          run a scan and store it
//	GET    /api/scans         recent scans, newest first
//	GET    /api/scan/{id}     one stored scan
//	DELETE /api/scan/{id}     remove a stored scan
//	GET    /api/report/{id}   download a report (?format=text|markdown|json)
//	GET    /api/stats         aggregate statistics over the history
//	GET    /api/health        liveness probe
//	GET    /api/ai-status     which suggestion engine is active
//
// Errors are JSON objects of the form {"detail": "..."}.
package server
