package inventory

import "errors"

// ErrOversell is returned when a deduction would take available quantity
// below zero.
var ErrOversell = errors.New("insufficient stock to mark as sold")

// Ledger tracks a product's available quantity. It is pure bookkeeping:
// callers load the quantity, apply deductions or restores, and persist the
// result themselves.
type Ledger struct {
	Quantity int64
}

// CanDeduct reports whether n units are available.
func (l Ledger) CanDeduct(n int64) bool { return l.Quantity >= n }

// Deduct removes n units. The quantity never goes negative; a deduction
// that would do so fails with ErrOversell and leaves the ledger unchanged.
func (l *Ledger) Deduct(n int64) error {
	if !l.CanDeduct(n) {
		return ErrOversell
	}
	l.Quantity -= n
	return nil
}

// Restore puts n units back, undoing a prior deduction.
func (l *Ledger) Restore(n int64) {
	l.Quantity += n
}

// SoldOut reports whether no units remain.
func (l Ledger) SoldOut() bool { return l.Quantity <= 0 }
