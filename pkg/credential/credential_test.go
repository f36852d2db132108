package credential

import (
	"errors"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	cred, err := Parse("Basic alice:secret1")
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if cred.Method != "Basic" {
		t.Errorf("Method = %q, want %q", cred.Method, "Basic")
	}
	if cred.Username != "alice" {
		t.Errorf("Username = %q, want %q", cred.Username, "alice")
	}
	if cred.Password != "secret1" {
		t.Errorf("Password = %q, want %q", cred.Password, "secret1")
	}
}

func TestParse_EmptyFieldsAreStructurallyValid(t *testing.T) {
	cred, err := Parse("Basic :")
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if cred.Username != "" || cred.Password != "" {
		t.Errorf("got (%q, %q), want empty username and password", cred.Username, cred.Password)
	}
}

func TestParse_BadSpaceCount(t *testing.T) {
	cases := []string{
		"invalid_format",
		"Basic alice secret1",
		"Basic alice:secret1 extra",
		"",
	}
	for _, raw := range cases {
		if _, err := Parse(raw); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformed", raw, err)
		}
	}
}

func TestParse_BadColonCount(t *testing.T) {
	cases := []string{
		"Basic alicesecret1",
		"Basic alice:secret:1",
	}
	for _, raw := range cases {
		if _, err := Parse(raw); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformed", raw, err)
		}
	}
}

func TestNormalize(t *testing.T) {
	cred := Credential{Method: "Basic", Username: "Alice", Password: "SeCrEt"}

	norm := cred.Normalize()
	if norm.Username != "alice" || norm.Password != "secret" {
		t.Errorf("Normalize() = (%q, %q), want (alice, secret)", norm.Username, norm.Password)
	}

	// Idempotent.
	again := norm.Normalize()
	if again != norm {
		t.Errorf("Normalize() not idempotent: %+v != %+v", again, norm)
	}

	// Method is left alone.
	if norm.Method != "Basic" {
		t.Errorf("Method = %q, want %q", norm.Method, "Basic")
	}
}
