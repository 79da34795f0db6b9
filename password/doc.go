// Package password implements password hashing and verification with
// Argon2id and PHC-formatted digests.
//
// The engine treats the hashing primitive as a collaborator with a
// hash/verify contract; this package is that collaborator. Verification is
// constant-time on the digest compare and dominated by key derivation, so
// success and failure sit in the same timing class.
package password
