package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleType selects which of the schedule's two accounts plays the debit
// role and which the credit role when a period is recognized.
type ScheduleType string

const (
	// SchedulePrepaidExpense releases a prepaid asset into expense.
	SchedulePrepaidExpense ScheduleType = "PREPAID_EXPENSE"
	// ScheduleUnearnedRevenue recognizes deferred revenue as earned.
	ScheduleUnearnedRevenue ScheduleType = "UNEARNED_REVENUE"
	// ScheduleIntangibleAmortization amortizes an intangible asset.
	ScheduleIntangibleAmortization ScheduleType = "INTANGIBLE_AMORTIZATION"
	// ScheduleAccruedRevenue accrues revenue earned but not yet billed.
	ScheduleAccruedRevenue ScheduleType = "ACCRUED_REVENUE"
)

// AccountRole names one of the schedule's two account references.
type AccountRole string

const (
	RoleSource AccountRole = "SOURCE"
	RoleTarget AccountRole = "TARGET"
)

// RolePair is the (debit, credit) account-role assignment for one schedule
// type.
type RolePair struct {
	Debit  AccountRole
	Credit AccountRole
}

// scheduleRoles maps each schedule type to its posting roles. The mapping is
// data so it can be tested independently of the posting path.
var scheduleRoles = map[ScheduleType]RolePair{
	SchedulePrepaidExpense:         {Debit: RoleTarget, Credit: RoleSource},
	ScheduleUnearnedRevenue:        {Debit: RoleSource, Credit: RoleTarget},
	ScheduleIntangibleAmortization: {Debit: RoleTarget, Credit: RoleSource},
	ScheduleAccruedRevenue:         {Debit: RoleSource, Credit: RoleTarget},
}

// RolesFor returns the debit/credit role pair for a schedule type.
func RolesFor(t ScheduleType) (RolePair, bool) {
	pair, ok := scheduleRoles[t]
	return pair, ok
}

// ScheduleEntryStatus is the lifecycle state of one period's entry.
type ScheduleEntryStatus string

const (
	SchedulePending ScheduleEntryStatus = "PENDING"
	SchedulePosted  ScheduleEntryStatus = "POSTED"
	ScheduleSkipped ScheduleEntryStatus = "SKIPPED"
)

// CanTransitionScheduleEntry reports whether a schedule entry may move from
// one status to another. POSTED and SKIPPED are terminal.
func CanTransitionScheduleEntry(from, to ScheduleEntryStatus) bool {
	if from != SchedulePending {
		return false
	}

	return to == SchedulePosted || to == ScheduleSkipped
}

// Schedule is an amortization or depreciation plan: a total amount spread
// over a number of periods between a source and a target account.
type Schedule struct {
	ID              string
	Name            string
	Type            ScheduleType
	TotalAmount     decimal.Decimal
	Periods         int
	SourceAccountID string
	TargetAccountID string
	Active          bool
	AutoPost        bool
	PostedCount     int
	PendingCount    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AccountForRole resolves a role to the schedule's concrete account ID.
func (s *Schedule) AccountForRole(r AccountRole) string {
	if r == RoleSource {
		return s.SourceAccountID
	}

	return s.TargetAccountID
}

// ScheduleEntry is one period's scheduled posting.
type ScheduleEntry struct {
	ID          string
	ScheduleID  string
	PeriodNo    int
	PeriodStart time.Time
	PeriodEnd   time.Time
	Amount      decimal.Decimal
	Status      ScheduleEntryStatus
	JournalID   *string
	PostedAt    *time.Time
	GeneratedAt *time.Time
	CreatedAt   time.Time
}
