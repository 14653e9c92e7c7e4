package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Fixed Argon2id encoding parameters. Cost parameters come from PasswordParams.
const (
	argonKeyLen  = 32 // output hash length
	argonSaltLen = 16 // salt length
)

// ErrMalformedHash is returned when a stored hash cannot be decoded.
// It indicates corrupt data, not a failed login.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordParams are the Argon2id cost parameters used for new hashes.
type PasswordParams struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8  // parallelism
}

// DefaultPasswordParams is the OWASP 2025 recommendation.
var DefaultPasswordParams = PasswordParams{Time: 3, Memory: 64 * 1024, Threads: 1}

// Hasher hashes and verifies passwords.
//
// New hashes are Argon2id PHC strings:
//
//	$argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
//
// Verification reads the parameters from the stored string, so changing
// PasswordParams never invalidates existing hashes. bcrypt hashes written
// by earlier deployments are still accepted.
type Hasher struct {
	params PasswordParams
}

// NewHasher returns a Hasher using params for new hashes.
// Zero fields fall back to DefaultPasswordParams.
func NewHasher(params PasswordParams) *Hasher {
	if params.Time == 0 {
		params.Time = DefaultPasswordParams.Time
	}
	if params.Memory == 0 {
		params.Memory = DefaultPasswordParams.Memory
	}
	if params.Threads == 0 {
		params.Threads = DefaultPasswordParams.Threads
	}
	return &Hasher{params: params}
}

// Hash hashes a plaintext password with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify checks a plaintext password against a stored hash.
// A mismatch is (false, nil); an undecodable hash is an error.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	if isBcrypt(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
		}
	}

	salt, hash, params, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, uint32(len(hash))) //nolint:gosec // G115: hash length always fits uint32

	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

// NeedsRehash reports whether encodedHash should be replaced by a fresh
// hash: it is bcrypt, or Argon2id with parameters other than the current ones.
func (h *Hasher) NeedsRehash(encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return true
	}
	_, _, params, err := decodePHC(encodedHash)
	if err != nil {
		return false
	}
	return params != h.params
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// decodePHC parses an Argon2id PHC string format into its components.
func decodePHC(encoded string) (salt, hash []byte, params PasswordParams, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 { //nolint:mnd // PHC format has exactly 6 $-delimited parts
		return nil, nil, params, fmt.Errorf("%w: invalid PHC format", ErrMalformedHash)
	}

	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return nil, nil, params, fmt.Errorf("%w: parsing version: %w", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return nil, nil, params, fmt.Errorf("%w: parsing parameters: %w", ErrMalformedHash, err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("%w: decoding salt: %w", ErrMalformedHash, err)
	}

	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return nil, nil, params, fmt.Errorf("%w: decoding hash", ErrMalformedHash)
	}

	return salt, hash, params, nil
}
