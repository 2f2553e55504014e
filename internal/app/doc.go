// Package app wires the sectorpulse pipeline together and drives a single
// reporting run end to end.
//
// # Run Flow
//
// A run proceeds through the following stages:
//
//	1. Fetch the description and quote listing tables from the provider
//	2. Merge them into unified stock records
//	3. Rank sectors (top mode) or select keyword groups (watchlist mode)
//	4. Reconcile investor flow for the selected stocks (top mode only)
//	5. Render the report and deliver it
//
// # Delivery Policy
//
// Each run produces exactly one outbound message. If any stage before
// delivery fails, a failure notification is sent in place of the report and
// the error is returned. A failed delivery of a successfully built report is
// returned as an error without a second send attempt.
//
// # Dependencies
//
// The App depends on three narrow interfaces: ListingSource for the listing
// tables, flow.HistorySource for per-stock trading history, and Deliverer
// for the outbound message. Production wiring uses the datasource and
// telegram packages; tests substitute fakes.
package app
