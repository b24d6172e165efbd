package typeid

import (
	"strings"
	"testing"
)

func TestNewElementID(t *testing.T) {
	a, b := NewElementID(), NewElementID()
	if a == b {
		t.Fatal("expected unique ids")
	}
	if !strings.HasPrefix(a, PrefixElement+"_") {
		t.Errorf("expected %q prefix, got %q", PrefixElement, a)
	}
	if err := Validate(a, PrefixElement); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(NewDesignID(), PrefixElement); err == nil {
		t.Error("expected prefix mismatch error")
	}
	if err := Validate("not-a-typeid", PrefixDesign); err == nil {
		t.Error("expected parse error")
	}
}
