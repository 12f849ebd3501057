// Package main provides the entry point for the sharecrawl CLI.
//
// sharecrawl explores browser-based file share links, extracts image
// preview references, and writes one JSON artifact per share.
//
// Usage:
//
//	sharecrawl crawl <share-link>
//	sharecrawl batch --csv targets.csv
//
// See --help for all available options.
package main

// main is the entry point for sharecrawl.
func main() {
	Execute()
}
