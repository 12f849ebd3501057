// Package session provides the navigation session used to explore a
// remote share tree through its browser UI.
//
// # Architecture
//
// The remote exposes no tree API. The only available operations are the
// ones a human has: look at the current listing, click an entry, close a
// preview, go back. Navigator captures exactly that capability surface,
// and Session implements it on top of a go-rod browser page.
//
// A Session wraps one page whose "current location" is global mutable
// state, so callers must issue strictly sequential calls. One Session is
// held for the duration of a single crawl and released afterwards; the
// Browser that produced it can hand out further sessions for later
// targets.
//
// # Fault handling
//
// Interaction faults in a rendering UI are overwhelmingly transient
// (an element not yet interactive, a click intercepted by an animation,
// a stale reference after a re-render). Operations therefore retry a
// small fixed number of times via the Do combinator and then fall back
// to a forced, non-interactive path: JS-eval click for activation,
// forced hash jump for back navigation. Only when the fallback also
// fails does an operation escalate, and then with one of the sentinel
// errors in errors.go.
package session
