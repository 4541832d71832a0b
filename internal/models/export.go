package models

// ReportFormat enumerates supported export encodings.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportKind enumerates the available exports.
type ReportKind string

const (
	ReportKindRoster  ReportKind = "roster"
	ReportKindArrears ReportKind = "arrears"
	ReportKindLedger  ReportKind = "ledger"
)
