// Package nhatot provides a crawler for paginated real-estate listings on
// nhatot.com. It drives a remote browser session page by page, converts each
// rendered page's markup into structured property records, and persists the
// accumulated records in a flat tabular form.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package nhatot
