// Package report serializes crawl results into durable artifacts.
//
// The artifact document carries three sections: metadata describing the
// crawl parameters, the nested tree, and a flat listing derived depth
// first (one folder row per node, then one file row per leaf, before
// descending). Serialization is pure and repeatable: the same result and
// metadata produce byte-identical output.
//
// Readers accept two shapes for backward compatibility: the structured
// document and a legacy bare array of flat rows. The writer always emits
// the structured form.
//
// The package also renders a Markdown summary of a batch run and derives
// safe artifact file names from target identifiers.
package report
