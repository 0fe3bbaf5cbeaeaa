package answer

import "testing"

func TestRegistry_Lookup(t *testing.T) {
	r := testRegistry()

	name, ok := r.Lookup("nit-hamirpur")
	if !ok || name != "NIT Hamirpur" {
		t.Errorf("Lookup(nit-hamirpur) = %q, %v", name, ok)
	}

	if _, ok := r.Lookup("nope"); ok {
		t.Error("unknown slug must not resolve")
	}
}

func TestRegistry_AllSorted(t *testing.T) {
	r := testRegistry()

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 colleges, got %d", len(all))
	}
	if all[0].Name != "IIT Mandi" || all[1].Name != "NIT Hamirpur" {
		t.Errorf("expected display-name order, got %v", all)
	}
}

func TestRegistry_CopiesInput(t *testing.T) {
	src := map[string]string{"a": "A"}
	r := NewRegistry(src)
	src["b"] = "B"

	if _, ok := r.Lookup("b"); ok {
		t.Error("registry must not observe later mutations of the source map")
	}
}
