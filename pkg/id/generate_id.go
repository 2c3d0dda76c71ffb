// Package id generates the public identifiers handed out for approvals,
// attachments, and comments.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID32 returns a 32-char lowercase hex id built from 16 random bytes.
// No separators or prefixes; safe for URLs and database char(32) columns.
func NewID32() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
