package domain

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
)

// IdentityHash derives the dedup and idempotency key for an article.
// Two entries with equal (title, link) are the same logical article no
// matter how the other fields drift between fetches.
func IdentityHash(title, link string) string {
	sum := sha256.Sum256([]byte(title + "_" + link))
	return fmt.Sprintf("%x", sum)
}

// ContentHash tracks summary drift between fetches. It is a change-detection
// aid only and carries no uniqueness constraint.
func ContentHash(title, summary string) string {
	sum := md5.Sum([]byte(title + "_" + summary))
	return fmt.Sprintf("%x", sum)
}
