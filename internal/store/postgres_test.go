package store

import "testing"

func TestCheckAffectedNotFound(t *testing.T) {
	if err := checkAffected(zeroRowsResult{}); err != ErrNotFound {
		t.Fatalf("checkAffected(0 rows) = %v, want ErrNotFound", err)
	}
}

func TestCheckAffectedOK(t *testing.T) {
	if err := checkAffected(oneRowResult{}); err != nil {
		t.Fatalf("checkAffected(1 row) = %v, want nil", err)
	}
}

type zeroRowsResult struct{}

func (zeroRowsResult) LastInsertId() (int64, error) { return 0, nil }
func (zeroRowsResult) RowsAffected() (int64, error) { return 0, nil }

type oneRowResult struct{}

func (oneRowResult) LastInsertId() (int64, error) { return 0, nil }
func (oneRowResult) RowsAffected() (int64, error) { return 1, nil }
