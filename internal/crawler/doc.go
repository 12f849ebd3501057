// Package crawler implements the depth-first crawl engine.
//
// The engine reconstructs the remote tree purely from sequential
// navigate-and-observe calls against one session.Navigator. Each visit
// runs the same sequence: check the visited set, list entries, extract
// matching leaves in listing order, then recurse into each subfolder and
// navigate back. Sibling order is remote listing order throughout; the
// engine never sorts.
//
// A visited set of locations guards against cyclic or duplicate remote
// links: a revisited location yields an empty placeholder node instead of
// re-expanding. Together with the depth budget this guarantees
// termination, since every recursive call either exhausts the budget or
// grows the visited set, which is bounded by the real tree size.
//
// Failure policy: one leaf's extraction failure is logged and skipped,
// never cancelling its siblings. A folder activation that fails even
// after the session's fallback aborts the whole crawl, since the session
// position can no longer be trusted.
package crawler
