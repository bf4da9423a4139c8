package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes customer invoices from supplier bills.
type DocumentKind string

const (
	DocumentReceivable DocumentKind = "RECEIVABLE"
	DocumentPayable    DocumentKind = "PAYABLE"
)

// OutstandingDocument is a read-only view of an invoice or bill with an
// unpaid remainder. Only strictly-positive balances participate in aging.
type OutstandingDocument struct {
	ID          string
	Kind        DocumentKind
	ContactID   string
	ContactCode string
	ContactName string
	Number      string
	IssueDate   time.Time
	DueDate     time.Time
	BalanceDue  decimal.Decimal
}

// AgingBucket classifies how far past due a document is.
type AgingBucket int

const (
	BucketCurrent AgingBucket = iota
	Bucket1To30
	Bucket31To60
	Bucket61To90
	BucketOver90
)

// ClassifyOverdue maps whole days overdue to an aging bucket. Zero or
// negative days overdue means the document is current.
func ClassifyOverdue(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return Bucket1To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// DaysOverdue returns whole days between the due date and asOf, truncating
// both to dates so time-of-day never shifts a bucket boundary.
func DaysOverdue(dueDate, asOf time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	at := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	return int(at.Sub(due).Hours() / 24)
}
