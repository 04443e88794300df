// Package source has the supplier adapters that feed the vintage store.
// Each adapter implements contract.SourceAdapter, so API-backed and
// file-backed suppliers are interchangeable. Adapters wrap every transport or
// parse failure in schema.ErrSourceUnavailable; retry policy lives here, not
// in the core.
package source
