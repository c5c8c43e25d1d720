package inventory

import (
	"errors"
	"testing"
)

func TestLedger_Deduct(t *testing.T) {
	l := Ledger{Quantity: 5}

	if err := l.Deduct(3); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if l.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", l.Quantity)
	}
	if l.SoldOut() {
		t.Error("Expected not sold out at quantity 2")
	}
}

func TestLedger_Deduct_Oversell(t *testing.T) {
	l := Ledger{Quantity: 2}

	err := l.Deduct(3)
	if !errors.Is(err, ErrOversell) {
		t.Fatalf("Expected ErrOversell, got: %v", err)
	}
	if l.Quantity != 2 {
		t.Errorf("Oversell must leave ledger unchanged, got %d", l.Quantity)
	}
}

func TestLedger_DeductToZero(t *testing.T) {
	l := Ledger{Quantity: 2}

	if err := l.Deduct(2); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if l.Quantity != 0 {
		t.Errorf("Expected quantity 0, got %d", l.Quantity)
	}
	if !l.SoldOut() {
		t.Error("Expected sold out at quantity 0")
	}
}

func TestLedger_RestoreUndoesDeduct(t *testing.T) {
	l := Ledger{Quantity: 5}
	if err := l.Deduct(5); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	l.Restore(5)
	if l.Quantity != 5 {
		t.Errorf("Expected quantity restored to 5, got %d", l.Quantity)
	}
}
