package cops

import "testing"

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	if !reg.Frozen() {
		t.Fatal("Default must return a frozen registry")
	}
	if _, ok := reg.Lookup("Rails/ModuleLevelRelativeDate"); !ok {
		t.Error("Rails/ModuleLevelRelativeDate is not registered")
	}
	for _, id := range []string{SyntaxID, DirectiveID, "Rails/ModuleLevelRelativeDate"} {
		if !Known(reg, id) {
			t.Errorf("Known(%q) = false", id)
		}
	}
	if Known(reg, "Style/Nope") {
		t.Error("unknown cop reported as known")
	}
}

func TestKnownDepartment(t *testing.T) {
	reg := Default()
	for name, want := range map[string]bool{"Rails": true, "Lint": true, "Style": false, "Rails/ModuleLevelRelativeDate": false} {
		if got := KnownDepartment(reg, name); got != want {
			t.Errorf("KnownDepartment(%q) = %v, want %v", name, got, want)
		}
	}
}
