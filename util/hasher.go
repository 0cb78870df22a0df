package util

import (
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/taigrr/colorhash"
)

// MaxBuckets is the largest top-level fan-out supported by the hashed layout.
// Bucket names are printed with three digits, so 1000 is the ceiling.
const MaxBuckets = 1000

// MaxNameLen is the longest directory entry name most filesystems accept.
const MaxNameLen = 255

// lowercase base32hex keeps encoded names distinct on case-insensitive filesystems
var nameEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// Bucket returns the top-level bucket for an identifier.
// The bucket is derived from a color hash of the id modulo buckets, the same
// way archive buckets are derived from content hashes.
func Bucket(id string, buckets int) int {
	if buckets <= 0 {
		return 0
	}
	b := colorhash.HashString(id) % buckets
	if b < 0 {
		b = -b
	}
	return b
}

// BucketName formats a bucket index as a directory name.
func BucketName(bucket int) string {
	return fmt.Sprintf("%03d", bucket)
}

// Subbucket returns the second-level directory name for an identifier: the
// first byte of its SHA-256 digest in hex, giving 256 subbuckets per bucket.
func Subbucket(id string) string {
	sum := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%02x", sum[0])
}

// EncodeName turns an arbitrary identifier into a filesystem-safe name.
// The result only uses [0-9a-v] and decodes back with DecodeName.
func EncodeName(id string) string {
	return strings.ToLower(nameEncoding.EncodeToString([]byte(id)))
}

// DecodeName reverses EncodeName.
func DecodeName(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	b, err := nameEncoding.DecodeString(strings.ToUpper(name))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, err)
	}
	return string(b), nil
}

// EncodedLen returns the length of EncodeName's output for an id of n bytes.
func EncodedLen(n int) int {
	return nameEncoding.EncodedLen(n)
}

// IsBucketName reports whether name looks like a directory produced by BucketName.
func IsBucketName(name string) bool {
	if len(name) != 3 {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// IsSubbucketName reports whether name looks like a directory produced by Subbucket.
func IsSubbucketName(name string) bool {
	if len(name) != 2 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
