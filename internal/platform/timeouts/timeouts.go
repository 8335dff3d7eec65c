// Package timeouts defines shared timeout constants used across the console.
package timeouts

import "time"

// APIRequest caps a single upstream API request issued by the console.
const APIRequest = 10 * time.Second

// Lookup caps a lookup (countries, cities, roles...) fetch.
const Lookup = 5 * time.Second

// LookupTTL is how long a successful lookup stays in the in-memory cache.
const LookupTTL = 5 * time.Minute

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SearchDebounce is the quiet period after the last keystroke before a
// search request is issued.
const SearchDebounce = 300 * time.Millisecond
