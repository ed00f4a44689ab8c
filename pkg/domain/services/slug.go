package services

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify lowercases text and joins its alphanumeric runs with hyphens.
func Slugify(text string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// SlugWithSuffix appends a short random suffix, used where titles repeat.
func SlugWithSuffix(text string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	base := Slugify(text)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// UniqueSlug returns Slugify(text), adding -2, -3, ... until taken reports false.
func UniqueSlug(text string, taken func(string) bool) string {
	base := Slugify(text)
	if base == "" {
		base = "vendor"
	}
	slug := base
	for n := 2; taken(slug); n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	return slug
}
