package repository

import "testing"

func TestNewOptimisticLockError(t *testing.T) {
	err := NewOptimisticLockError("user-42", 3, 4)
	if err.EntityID != "user-42" || err.Expected != 3 || err.Actual != 4 {
		t.Fatalf("unexpected fields: %+v", err)
	}
}

func TestOptimisticLockError_Error(t *testing.T) {
	err := &OptimisticLockError{
		EntityID: "order-7",
		Expected: 2,
		Actual:   5,
	}
	got := err.Error()
	want := "optimistic lock failed for entity order-7: expected version 2, got 5"
	if got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name     string
		stored   *TestEntity
		incoming *TestEntity
		wantErr  bool
	}{
		{name: "same version", stored: &TestEntity{Version: 2}, incoming: &TestEntity{Version: 2}},
		{name: "stale version", stored: &TestEntity{Version: 3}, incoming: &TestEntity{Version: 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersion(int64(1), tt.stored, tt.incoming)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckVersion_NonVersionedAlwaysPasses(t *testing.T) {
	if err := CheckVersion(int64(1), &TestEntityNoVersion{}, &TestEntityNoVersion{}); err != nil {
		t.Fatalf("CheckVersion() error = %v", err)
	}
}

func TestBumpVersion(t *testing.T) {
	e := &TestEntity{Version: 4}
	BumpVersion(e)
	if e.Version != 5 {
		t.Fatalf("version = %d, want 5", e.Version)
	}
}
