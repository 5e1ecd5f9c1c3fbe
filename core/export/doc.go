// Package export renders fetch and reconciliation results for consumers.
//
// The core hands the sink plain structured data (record lists and the
// aggregate statistics) and the sink owns every formatting concern. The
// shipped sinks write Excel workbooks (one per extract, dated file names) or
// plain CSV files; a separate reporter renders the PDF report set. Produced
// files can be archived to object storage.
package export
