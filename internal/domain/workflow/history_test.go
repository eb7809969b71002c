package workflow

import (
	"fmt"
	"testing"
)

func TestHistory_NewestFirstAndBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Add(&Execution{ID: fmt.Sprintf("e%d", i), Status: StatusCompleted})
	}
	list := h.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(list))
	}
	if list[0].ID != "e5" || list[2].ID != "e3" {
		t.Errorf("expected e5..e3, got %s..%s", list[0].ID, list[2].ID)
	}
	if _, ok := h.Get("e1"); ok {
		t.Error("expected oldest entry evicted")
	}
}

func TestHistory_EmptyListNotNil(t *testing.T) {
	if list := NewHistory(0).List(); list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", list)
	}
}

func TestHistory_StoresCopies(t *testing.T) {
	h := NewHistory(2)
	e := &Execution{ID: "e1", Steps: []StepResult{{Name: StepNotify, Status: StepCompleted}}}
	h.Add(e)
	e.Steps[0].Status = StepFailed
	e.Steps = append(e.Steps, StepResult{Name: StepLog})

	got, ok := h.Get("e1")
	if !ok {
		t.Fatal("expected execution")
	}
	if len(got.Steps) != 1 || got.Steps[0].Status != StepCompleted {
		t.Errorf("history mutated through caller: %+v", got.Steps)
	}
}
