package function

import "testing"

func TestDescriptor_ArgumentSet(t *testing.T) {
	d := Descriptor{ArgumentNames: []string{"x", "y"}}

	set := d.ArgumentSet()

	if len(set) != 2 {
		t.Fatalf("ArgumentSet() len = %d, want 2", len(set))
	}

	if _, ok := set["x"]; !ok {
		t.Errorf("ArgumentSet() missing %q", "x")
	}
}

func TestDescriptor_InputOutputSets(t *testing.T) {
	d := Descriptor{
		InputNames:  []string{"in"},
		OutputNames: []string{"out"},
	}

	if _, ok := d.InputSet()["in"]; !ok {
		t.Errorf("InputSet() missing %q", "in")
	}

	if _, ok := d.OutputSet()["out"]; !ok {
		t.Errorf("OutputSet() missing %q", "out")
	}
}
