package credentials

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

const HashVersionArgon2id = "argon2id"

var (
	// ErrInvalidHashFormat means the encoded hash string is malformed:
	// wrong field count, wrong scheme tag, or undecodable fields.
	ErrInvalidHashFormat = errors.New("credentials: invalid hash format")

	// ErrIncompatibleVersion means the hash embeds an Argon2 version this
	// build cannot reproduce. Surface loudly; it signals a library skew.
	ErrIncompatibleVersion = errors.New("credentials: incompatible argon2 version")

	// ErrHashingFailure wraps transient failures (randomness source).
	ErrHashingFailure = errors.New("credentials: hashing failure")
)

// Params are the Argon2id cost settings. Changing them does not break
// verification of old hashes: Verify always reads the parameters back out
// of the encoded string.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams matches the stored-hash contract: t=1, m=64 MiB, p=4.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes and verifies passwords with Argon2id. Each derivation holds
// ~Memory KiB for its duration, so in-flight calls are bounded by a weighted
// semaphore; acquisition respects the caller's context.
type Hasher struct {
	params Params
	sem    *semaphore.Weighted
}

func NewHasher(params Params, maxConcurrent int) *Hasher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Hasher{
		params: params,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash returns the encoded form
// $argon2id$v=19$m=<mem>,t=<time>,p=<par>$<b64 salt>$<b64 hash>
// with a fresh random salt. Equal passwords hash to different strings.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify re-derives the hash using the parameters and salt embedded in
// encoded and compares in constant time. A wrong password is (false, nil),
// not an error. The key length is taken from the stored hash so historical
// hashes with a different output length still verify.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	params, salt, expected, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	key := argon2.IDKey(
		[]byte(password),
		salt,
		params.Time,
		params.Memory,
		params.Parallelism,
		uint32(len(expected)),
	)

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != HashVersionArgon2id {
		return Params{}, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return Params{}, nil, nil, ErrIncompatibleVersion
	}

	var mem, t uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &t, &par); err != nil {
		return Params{}, nil, nil, ErrInvalidHashFormat
	}
	if mem == 0 || t == 0 || par == 0 {
		return Params{}, nil, nil, ErrInvalidHashFormat
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHashFormat
	}
	hash, err := b64.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHashFormat
	}

	params := Params{
		Memory:      mem,
		Time:        t,
		Parallelism: par,
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(hash)),
	}
	return params, salt, hash, nil
}
