// Package auth provides account authentication for displayhub.
//
// It covers:
//   - Argon2id password hashing, with verification of legacy bcrypt hashes
//   - Short-lived HS256 access tokens verified by signature alone
//   - Opaque refresh tokens backed by revocable session rows
//   - The caller identity carried through request contexts
//
// A session is either active or revoked; revocation is one-way and there is
// no age-based expiry. Access tokens are not persisted, so logging out does
// not invalidate access tokens that were already issued.
package auth
