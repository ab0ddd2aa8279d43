package password

import (
	"strings"
	"testing"
)

func testConfig() Config {
	// Minimum-cost parameters keep the test fast.
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
}

func TestHashAndVerify(t *testing.T) {
	h, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	encoded, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected PHC prefix: %q", encoded)
	}

	ok, err := h.Verify("correct horse battery staple", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify = %v, %v; want true", ok, err)
	}

	ok, err = h.Verify("wrong password", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	h, _ := NewHasher(testConfig())

	a, err := h.Hash("same input")
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Hash("same input")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, _ := NewHasher(testConfig())
	encoded, err := weak.Hash("some password")
	if err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Memory = 16 * 1024
	strong, _ := NewHasher(cfg)

	upgrade, err := strong.NeedsRehash(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !upgrade {
		t.Fatal("expected rehash for weaker stored parameters")
	}

	upgrade, err = weak.NeedsRehash(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if upgrade {
		t.Fatal("unexpected rehash for matching parameters")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	h, _ := NewHasher(testConfig())

	for _, bad := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	} {
		if _, err := h.Verify("pw", bad); err == nil {
			t.Errorf("Verify accepted malformed hash %q", bad)
		}
	}
}
