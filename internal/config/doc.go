// Package config provides configuration structures and utilities for webpulse.
// It defines the scan, server and report options, the .webpulse YAML file
// with its per-site request settings, and the XDG directory layout.
package config
