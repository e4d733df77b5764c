// Package catalog owns the illustration catalogue: the Record model, the
// JSON document store with atomic checkpoint writes, reconciliation of the
// upstream catalogue against already-enriched records, and the first-run
// bootstrap download of the upstream document.
package catalog
