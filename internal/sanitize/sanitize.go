// Package sanitize turns reflection type names into safe file names.
//
// Type names are user-chosen labels ("Daily Mood", "Sleep/Wake") and become the
// base name of an output CSV file. This package ensures the result is a single
// path element that is valid on Linux, macOS and Windows.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxFileNameLength is the maximum length in bytes of a sanitized base name.
	// It leaves room for a collision suffix and the ".csv" extension within
	// the common 255-byte file name limit.
	MaxFileNameLength = 200

	// HashSuffixLength is the length of the hash suffix added to truncated names.
	// Format: _<8-char-hash> = 9 characters total
	HashSuffixLength = 9

	// DefaultFileName is used when sanitization produces an empty result.
	DefaultFileName = "reflection"
)

// reservedNames are device names Windows refuses as file base names.
var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// FileName sanitizes a reflection type name for use as a file base name.
//
// Rules applied:
//   - Replaces path separators, characters reserved on Windows and control
//     characters with underscores
//   - Trims leading/trailing spaces and dots
//   - Suffixes Windows device names with an underscore
//   - Truncates to MaxFileNameLength with hash suffix if too long
//   - Returns DefaultFileName if result would be empty
//
// Case, spaces and non-ASCII letters are kept.
//
// Examples:
//
//	"Daily Mood"  -> "Daily Mood"
//	"Sleep/Wake"  -> "Sleep_Wake"
//	"../secret"   -> "_secret"
//	"" or "..."   -> "reflection"
func FileName(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "_")
	}

	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if unsafeRune(r) {
			result.WriteRune('_')
		} else {
			result.WriteRune(r)
		}
	}

	sanitized := strings.Trim(result.String(), " .")
	if sanitized == "" {
		return DefaultFileName
	}

	if reservedNames[strings.ToLower(strings.SplitN(sanitized, ".", 2)[0])] {
		sanitized += "_"
	}

	if len(sanitized) > MaxFileNameLength {
		sanitized = truncateWithHash(sanitized)
	}

	return sanitized
}

func unsafeRune(r rune) bool {
	switch r {
	case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
		return true
	}
	return r < 0x20 || r == 0x7f
}

// truncateWithHash truncates a string to fit within MaxFileNameLength,
// appending a hash suffix to preserve uniqueness. The cut never splits a
// UTF-8 sequence.
//
// Format: <truncated>_<8-char-hash>
func truncateWithHash(s string) string {
	hash := sha256.Sum256([]byte(s))
	hashSuffix := "_" + hex.EncodeToString(hash[:])[:8]

	maxBase := MaxFileNameLength - HashSuffixLength
	for maxBase > 0 && !utf8.RuneStart(s[maxBase]) {
		maxBase--
	}
	truncated := strings.TrimRight(s[:maxBase], " ._")

	return truncated + hashSuffix
}

// Namer hands out file base names that do not collide, compared
// case-insensitively so results are safe on case-folding file systems.
type Namer struct {
	taken map[string]struct{}
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{taken: make(map[string]struct{})}
}

// Next sanitizes typeName and, if the result is already taken, appends
// _2, _3, ... until it is unique.
func (n *Namer) Next(typeName string) string {
	name := FileName(typeName)
	candidate := name
	for i := 2; ; i++ {
		key := strings.ToLower(candidate)
		if _, ok := n.taken[key]; !ok {
			n.taken[key] = struct{}{}
			return candidate
		}
		candidate = name + "_" + strconv.Itoa(i)
	}
}
