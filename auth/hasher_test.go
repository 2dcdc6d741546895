package auth

import (
	"strings"
	"testing"
)

// light parameters keep the tests fast; Verify reads parameters from the
// encoded string, so these hashes behave like production ones.
func testHasher() *Hasher {
	return &Hasher{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := testHasher()
	encoded, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}
	ok, err := h.Verify(encoded, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify should match the original plaintext")
	}
}

func TestHasher_WrongPassword(t *testing.T) {
	h := testHasher()
	encoded, _ := h.Hash("secret-one")
	ok, err := h.Verify(encoded, "secret-two")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify must not match a different plaintext")
	}
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	h := testHasher()
	a, _ := h.Hash("same input")
	b, _ := h.Hash("same input")
	if a == b {
		t.Fatal("two hashes of the same input must differ (random salt)")
	}
}

func TestHasher_MalformedEncoding(t *testing.T) {
	h := testHasher()
	for _, bad := range []string{"", "plainhash", "$argon2i$v=19$m=64,t=1,p=1$c2FsdA$a2V5", "$argon2id$v=19$m=64$c2FsdA$a2V5"} {
		if _, err := h.Verify(bad, "x"); err == nil {
			t.Fatalf("Verify(%q) should fail", bad)
		}
	}
}

func TestHasher_DefaultParameters(t *testing.T) {
	h := NewHasher()
	if h.Memory < 64*1024 || h.Iterations < 3 || h.Parallelism < 4 {
		t.Fatalf("defaults below reference parameters: m=%d t=%d p=%d", h.Memory, h.Iterations, h.Parallelism)
	}
}
