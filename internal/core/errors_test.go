package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	driverErr := errors.New("disk I/O error")
	storageErr := fmt.Errorf("append: %w", &StorageError{Op: "insert transaction", Err: driverErr})
	if !errors.Is(storageErr, ErrStorage) || !errors.Is(storageErr, driverErr) {
		t.Fatalf("storage error should unwrap to ErrStorage and the driver error: %v", storageErr)
	}
	if IsValidation(storageErr) || IsRetryable(storageErr) {
		t.Fatalf("storage error classified wrongly")
	}

	conflict := &ConflictError{UserID: "u1", Attempts: 3, Err: ErrConflict}
	if !IsRetryable(conflict) {
		t.Fatalf("conflict should be retryable")
	}

	tags := &UnknownTagsError{UserID: "u1", Missing: []string{"lunch", "dinner"}}
	var target *UnknownTagsError
	if !errors.As(fmt.Errorf("wrap: %w", tags), &target) || len(target.Missing) != 2 {
		t.Fatalf("expected UnknownTagsError with both names")
	}
	if !errors.Is(tags, ErrUnknownTags) || !IsValidation(tags) {
		t.Fatalf("unknown tags should be a validation error")
	}

	cat := &UnknownCategoryError{UserID: "u1", Name: "Food", Kind: Expense}
	if !errors.Is(cat, ErrUnknownCategory) {
		t.Fatalf("unknown category should unwrap to ErrUnknownCategory")
	}
}
