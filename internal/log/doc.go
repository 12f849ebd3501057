// Package log provides slog handler utilities for sharecrawl.
//
// DepthHandler wraps any slog.Handler and indents record messages
// according to a "depth" attribute, so the strictly sequential crawl
// narration reads like the tree it is walking:
//
//	waiting for listing
//	  open folder name=Aber
//	    preview file name=AL00038.jpg
//
// The indentation is presentation only and carries no compatibility
// guarantee; structured attributes pass through unchanged.
package log
