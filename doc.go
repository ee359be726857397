// Package trackmetal reconstructs an investor's precious-metal and crypto
// holdings history from heterogeneous transaction export files and computes
// tax lots and realized capital gains under FIFO accounting.
//
// The core functionalities include:
//   - Reconciliation: collapsing split-recorded transfers and like-kind
//     exchanges into single logical transfer events, synthesizing in-kind
//     storage fees to absorb quantity differences between legs.
//   - Lot Accounting: maintaining per-account/vault/metal/item-type open
//     lots with exact decimal weight and cost-basis tracking, applying FIFO
//     depletion for sales and in-kind fees.
//   - Taxable Sales: emitting one immutable realized-disposal record per lot
//     touched by a sale, with proportionally adjusted cost basis.
//   - Reporting: capital gains by year, open lots and aggregated holdings,
//     exported as markdown or tab-separated files.
//
// This package serves as the foundational logic for the `tm` command-line
// tool. Processing is strictly batch-oriented: the full transaction list is
// reconciled and replayed in chronological order, and any allocation failure
// aborts the run.
package trackmetal
