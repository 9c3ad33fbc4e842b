package domain

import (
	"math/rand/v2"
	"strings"
)

const (
	InviteCodeLen  = 8
	inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewInviteCode returns a random uppercase alphanumeric code.
func NewInviteCode() string {
	var b strings.Builder
	b.Grow(InviteCodeLen)
	for range InviteCodeLen {
		b.WriteByte(inviteAlphabet[rand.IntN(len(inviteAlphabet))])
	}
	return b.String()
}

// ValidInviteCode reports whether code has the shape NewInviteCode produces.
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLen {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(inviteAlphabet, r) {
			return false
		}
	}
	return true
}
