package credentials

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// testParams keeps derivations cheap; Verify reads costs back out of the
// encoded string, so the codec paths are identical to production params.
func testParams() Params {
	return Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams(), 2)
	ctx := context.Background()

	cases := []struct {
		name     string
		password string
	}{
		{name: "simple", password: "correct-horse"},
		{name: "empty", password: ""},
		{name: "unicode", password: "pässwörd-日本語"},
		{name: "long", password: strings.Repeat("a", 200)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			encoded, err := h.Hash(ctx, tc.password)
			if err != nil {
				t.Fatalf("hash failed: %v", err)
			}
			if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
				t.Fatalf("unexpected encoded prefix: %s", encoded)
			}

			matched, err := h.Verify(ctx, tc.password, encoded)
			if err != nil {
				t.Fatalf("verify failed: %v", err)
			}
			if !matched {
				t.Fatalf("expected match for original password")
			}

			matched, err = h.Verify(ctx, tc.password+"x", encoded)
			if err != nil {
				t.Fatalf("verify of wrong password errored: %v", err)
			}
			if matched {
				t.Fatalf("wrong password must not match")
			}
		})
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams(), 2)
	ctx := context.Background()

	first, err := h.Hash(ctx, "same-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := h.Hash(ctx, "same-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if first == second {
		t.Fatalf("two hashes of the same password must differ (fresh salt each call)")
	}

	for _, encoded := range []string{first, second} {
		matched, err := h.Verify(ctx, "same-password", encoded)
		if err != nil || !matched {
			t.Fatalf("both encodings must verify: matched=%v err=%v", matched, err)
		}
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams(), 2)
	ctx := context.Background()

	cases := []struct {
		name    string
		encoded string
		want    error
	}{
		{name: "empty", encoded: "", want: ErrInvalidHashFormat},
		{name: "too few fields", encoded: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA", want: ErrInvalidHashFormat},
		{name: "too many fields", encoded: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA$extra", want: ErrInvalidHashFormat},
		{name: "wrong scheme", encoded: "$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA", want: ErrInvalidHashFormat},
		{name: "bad version field", encoded: "$argon2id$version=19$m=8192,t=1,p=1$c2FsdA$aGFzaA", want: ErrInvalidHashFormat},
		{name: "wrong version", encoded: "$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA", want: ErrIncompatibleVersion},
		{name: "bad params", encoded: "$argon2id$v=19$mem=8192$c2FsdA$aGFzaA", want: ErrInvalidHashFormat},
		{name: "zero params", encoded: "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA", want: ErrInvalidHashFormat},
		{name: "bad salt b64", encoded: "$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA", want: ErrInvalidHashFormat},
		{name: "bad hash b64", encoded: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!!", want: ErrInvalidHashFormat},
		{name: "bcrypt hash", encoded: "$2a$10$N9qo8uLOickgx2ZMRZoMye", want: ErrInvalidHashFormat},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			matched, err := h.Verify(ctx, "whatever", tc.encoded)
			if matched {
				t.Fatalf("malformed hash must never match")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestVerifyReadsParamsFromHash(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Hash with one parameter set, verify with a hasher configured
	// differently; the encoded string is the source of truth.
	writer := NewHasher(Params{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   24,
	}, 1)

	encoded, err := writer.Hash(ctx, "stable-contract")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	reader := NewHasher(testParams(), 1)
	matched, err := reader.Verify(ctx, "stable-contract", encoded)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !matched {
		t.Fatalf("hash with different params must still verify")
	}
}

func TestHashCancelledContext(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Hash(ctx, "pw"); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}
