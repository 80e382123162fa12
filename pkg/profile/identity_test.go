package profile

import (
	"testing"

	"github.com/google/uuid"
)

func TestKeyDeterministic(t *testing.T) {
	if Key("u_001") != Key("u_001") {
		t.Fatal("key derivation must be deterministic")
	}
	if Key("u_001") == Key("u_002") {
		t.Fatal("distinct user ids must map to distinct keys")
	}
}

func TestKeyIsNamespacedUUID(t *testing.T) {
	got := Key("u_001")
	parsed, err := uuid.Parse(got)
	if err != nil {
		t.Fatalf("key is not a valid uuid: %v", err)
	}
	if parsed.Version() != 5 {
		t.Fatalf("expected a version-5 uuid, got version %d", parsed.Version())
	}
	// The namespace is a persisted-format contract; pin it.
	want := uuid.NewSHA1(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), []byte("u_001")).String()
	if got != want {
		t.Fatalf("key derivation changed: expected %s, got %s", want, got)
	}
}
