package mdsource

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize cleans front and back content so that cosmetic edits do
// not change a card's identity: trims whitespace, lowercases, and
// normalizes line endings, then joins the parts with a newline.
func Normalize(front, back string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}
	return normalizePart(front) + "\n" + normalizePart(back)
}

// Hash returns the SHA-256 of the normalized content as a hex string.
// Imports use it to skip cards that are already in the deck.
func Hash(front, back string) string {
	sum := sha256.Sum256([]byte(Normalize(front, back)))
	return fmt.Sprintf("%x", sum)
}
