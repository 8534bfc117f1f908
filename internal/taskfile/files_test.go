package taskfile

import (
	"errors"
	"testing"

	"github.com/conclave-run/taskcore/internal/identity"
)

func TestFiles_Assign(t *testing.T) {
	files := make(Files[InputFile])

	err := files.Assign("in", InputFile{ExternalID: "file-1", Owner: identity.NewUserList("alice")})
	if err != nil {
		t.Fatalf("Assign() = %v, want nil", err)
	}

	err = files.Assign("in", InputFile{ExternalID: "file-2", Owner: identity.NewUserList("alice")})
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("Assign() on bound name = %v, want ErrAlreadyAssigned", err)
	}
}

func TestFiles_KeySet(t *testing.T) {
	files := make(Files[InputFile])
	_ = files.Assign("in", InputFile{ExternalID: "file-1", Owner: identity.NewUserList("alice")})

	set := files.KeySet()
	if _, ok := set["in"]; !ok {
		t.Errorf("KeySet() missing assigned name")
	}
}

func TestUpdateOutputCMAC(t *testing.T) {
	files := make(Files[OutputFile])
	_ = files.Assign("out", OutputFile{ExternalID: "file-1", Owner: identity.NewUserList("alice")})

	of, err := UpdateOutputCMAC(files, "out", "tag-abc")
	if err != nil {
		t.Fatalf("UpdateOutputCMAC() = %v, want nil", err)
	}

	if of.CMAC != "tag-abc" {
		t.Errorf("CMAC = %q, want %q", of.CMAC, "tag-abc")
	}
}

func TestUpdateOutputCMAC_Unbound(t *testing.T) {
	files := make(Files[OutputFile])

	_, err := UpdateOutputCMAC(files, "out", "tag-abc")
	if !errors.Is(err, ErrNotAssigned) {
		t.Errorf("UpdateOutputCMAC() on unbound name = %v, want ErrNotAssigned", err)
	}
}

func TestUpdateOutputCMAC_RetagSameValue(t *testing.T) {
	files := make(Files[OutputFile])
	_ = files.Assign("out", OutputFile{ExternalID: "file-1", Owner: identity.NewUserList("alice")})

	_, err := UpdateOutputCMAC(files, "out", "tag-abc")
	if err != nil {
		t.Fatalf("first UpdateOutputCMAC() = %v, want nil", err)
	}

	_, err = UpdateOutputCMAC(files, "out", "tag-abc")
	if err != nil {
		t.Errorf("re-tagging with identical value should succeed, got %v", err)
	}
}

func TestUpdateOutputCMAC_RetagDifferentValue(t *testing.T) {
	files := make(Files[OutputFile])
	_ = files.Assign("out", OutputFile{ExternalID: "file-1", Owner: identity.NewUserList("alice")})

	_, err := UpdateOutputCMAC(files, "out", "tag-abc")
	if err != nil {
		t.Fatalf("first UpdateOutputCMAC() = %v, want nil", err)
	}

	_, err = UpdateOutputCMAC(files, "out", "tag-different")
	if !errors.Is(err, ErrCMACAlreadySet) {
		t.Errorf("UpdateOutputCMAC() re-tag with different value = %v, want ErrCMACAlreadySet", err)
	}
}
