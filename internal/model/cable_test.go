package model

import (
	"testing"

	"backend/pkg/apperror"

	"github.com/google/uuid"
)

func newDrum(remaining float64) *OpticalCable {
	return &OpticalCable{
		ID:              uuid.New(),
		TenantID:        uuid.New(),
		DrumNo:          "D-1001",
		TotalLength:     "2000",
		RemainingLength: remaining,
		Status:          CableStatusInStock,
	}
}

func mustApply(t *testing.T, cable *OpticalCable, action CableAction) *OpticalCableLog {
	t.Helper()
	log, err := ApplyCableAction(cable, action)
	if err != nil {
		t.Fatalf("%s failed: %v", action.Type, err)
	}
	return log
}

func TestDrumLifecycle(t *testing.T) {
	teamID := uuid.New()
	cable := newDrum(2000)

	mustApply(t, cable, CableAction{Type: CableLogAssign, TeamID: &teamID})
	if cable.Status != CableStatusAssigned {
		t.Fatalf("status = %s, want assigned", cable.Status)
	}
	if cable.CurrentTeamID == nil || *cable.CurrentTeamID != teamID {
		t.Fatal("current team not set on assignment")
	}

	log := mustApply(t, cable, CableAction{Type: CableLogUsage, InstallLength: 300, WasteLength: 20})
	if cable.RemainingLength != 1680 {
		t.Fatalf("remaining = %.1f, want 1680", cable.RemainingLength)
	}
	if log.BeforeRemaining != 2000 || log.AfterRemaining != 1680 {
		t.Fatalf("log window %.1f..%.1f, want 2000..1680", log.BeforeRemaining, log.AfterRemaining)
	}
	if log.UsedLength != 320 {
		t.Fatalf("log used length = %.1f, want 320", log.UsedLength)
	}

	mustApply(t, cable, CableAction{Type: CableLogReturn})
	if cable.Status != CableStatusReturned {
		t.Fatalf("status = %s, want returned", cable.Status)
	}
	if cable.CurrentTeamID != nil {
		t.Fatal("current team should be cleared on return")
	}

	// A returned drum can be dispatched again.
	mustApply(t, cable, CableAction{Type: CableLogAssign, TeamID: &teamID})
	if cable.Status != CableStatusAssigned {
		t.Fatalf("status = %s, want assigned after re-dispatch", cable.Status)
	}
}

func TestUsageExhaustsDrum(t *testing.T) {
	teamID := uuid.New()
	cable := newDrum(100)
	mustApply(t, cable, CableAction{Type: CableLogAssign, TeamID: &teamID})
	mustApply(t, cable, CableAction{Type: CableLogUsage, InstallLength: 100})

	if cable.Status != CableStatusUsedUp {
		t.Fatalf("status = %s, want used_up", cable.Status)
	}
	if !cable.Exhausted() {
		t.Fatal("drum should report exhausted")
	}

	// A used-up drum accepts no further transitions.
	for _, action := range []CableAction{
		{Type: CableLogAssign, TeamID: &teamID},
		{Type: CableLogUsage, InstallLength: 1},
		{Type: CableLogReturn},
		{Type: CableLogWaste, WasteLength: 1},
	} {
		if _, err := ApplyCableAction(cable, action); !apperror.IsKind(err, apperror.KindStateConflict) {
			t.Fatalf("%s on used_up drum: got %v, want state conflict", action.Type, err)
		}
	}
}

func TestUsageRejectsOverconsumption(t *testing.T) {
	teamID := uuid.New()
	cable := newDrum(50)
	mustApply(t, cable, CableAction{Type: CableLogAssign, TeamID: &teamID})

	_, err := ApplyCableAction(cable, CableAction{Type: CableLogUsage, InstallLength: 40, WasteLength: 15})
	if !apperror.IsKind(err, apperror.KindCapacity) {
		t.Fatalf("got %v, want capacity error", err)
	}
	if cable.RemainingLength != 50 || cable.UsedLength != 0 {
		t.Fatal("drum mutated by a rejected transition")
	}
}

func TestWasteKeepsStatus(t *testing.T) {
	cable := newDrum(500)

	mustApply(t, cable, CableAction{Type: CableLogWaste, WasteLength: 500})

	// Waste may drain the drum completely without forcing used_up.
	if cable.Status != CableStatusInStock {
		t.Fatalf("status = %s, want in_stock", cable.Status)
	}
	if cable.RemainingLength != 0 {
		t.Fatalf("remaining = %.1f, want 0", cable.RemainingLength)
	}
	if !cable.Exhausted() {
		t.Fatal("drained drum should report exhausted")
	}
}

func TestAssignRequiresTeam(t *testing.T) {
	cable := newDrum(100)
	if _, err := ApplyCableAction(cable, CableAction{Type: CableLogAssign}); !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	cable := newDrum(100)

	// usage and return both require an assigned drum.
	if _, err := ApplyCableAction(cable, CableAction{Type: CableLogUsage, InstallLength: 10}); !apperror.IsKind(err, apperror.KindStateConflict) {
		t.Fatalf("usage from in_stock: got %v, want state conflict", err)
	}
	if _, err := ApplyCableAction(cable, CableAction{Type: CableLogReturn}); !apperror.IsKind(err, apperror.KindStateConflict) {
		t.Fatalf("return from in_stock: got %v, want state conflict", err)
	}
	if _, err := ApplyCableAction(cable, CableAction{Type: "melt"}); !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("unknown action: got %v, want validation error", err)
	}
}

func TestFoldMatchesAppliedState(t *testing.T) {
	teamID := uuid.New()
	cable := newDrum(1000)

	var logs []OpticalCableLog
	logs = append(logs, OpticalCableLog{
		LogType:         CableLogReceive,
		BeforeRemaining: 1000,
		AfterRemaining:  1000,
	})
	for _, action := range []CableAction{
		{Type: CableLogAssign, TeamID: &teamID},
		{Type: CableLogUsage, InstallLength: 250, WasteLength: 10},
		{Type: CableLogWaste, WasteLength: 40},
		{Type: CableLogReturn},
	} {
		logs = append(logs, *mustApply(t, cable, action))
	}

	fold := FoldCableLogs(1000, logs)

	if fold.Remaining != cable.RemainingLength {
		t.Fatalf("fold remaining = %.1f, drum has %.1f", fold.Remaining, cable.RemainingLength)
	}
	if fold.Used != cable.UsedLength {
		t.Fatalf("fold used = %.1f, drum has %.1f", fold.Used, cable.UsedLength)
	}
	if fold.Waste != cable.WasteLength {
		t.Fatalf("fold waste = %.1f, drum has %.1f", fold.Waste, cable.WasteLength)
	}
	if fold.Status != cable.Status {
		t.Fatalf("fold status = %s, drum has %s", fold.Status, cable.Status)
	}
	if fold.TeamID != nil || cable.CurrentTeamID != nil {
		t.Fatal("team should be cleared after return in both fold and drum")
	}
}

func TestNumericTotalLength(t *testing.T) {
	cable := newDrum(0)

	cable.TotalLength = " 1500 "
	if v, ok := cable.NumericTotalLength(); !ok || v != 1500 {
		t.Fatalf("got %v/%v, want 1500/true", v, ok)
	}

	cable.TotalLength = "2x1000m"
	if _, ok := cable.NumericTotalLength(); ok {
		t.Fatal("composite label should not parse")
	}
}
