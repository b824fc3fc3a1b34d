package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

var (
	nonSlugRunes   = regexp.MustCompile(`[^a-z0-9]+`)
	trailingNumber = regexp.MustCompile(`(\d+)$`)
)

// Slugify derives a URL-safe identifier from a display name: lowercase,
// with runs of anything but letters and digits collapsed to a single dash.
func Slugify(name string) string {
	slug := nonSlugRunes.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// NextAvailableSlug returns a unique slug for the given base. The existing
// slugs sharing the base are sorted in natural numeric order (name-2 before
// name-10) and the new suffix extrapolates from the highest one: a deleted
// middle suffix is never reused, so {name, name-2} yields name-3, not a
// count-based name-2.
func NextAvailableSlug(baseSlug string, slugs []string) string {
	if len(slugs) == 0 {
		return baseSlug
	}

	sorted := append([]string(nil), slugs...)
	sort.Slice(sorted, func(i, j int) bool {
		return naturalLess(sorted[i], sorted[j])
	})

	last := sorted[len(sorted)-1]
	if match := trailingNumber.FindString(last); match != "" {
		n, _ := strconv.Atoi(match)
		return fmt.Sprintf("%s-%d", baseSlug, n+1)
	}

	return baseSlug + "-1"
}

// naturalLess compares strings chunk by chunk, treating digit runs as
// numbers so that "name-2" sorts before "name-10".
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		aChunk, aRest, aNumeric := nextChunk(a)
		bChunk, bRest, bNumeric := nextChunk(b)

		if aNumeric && bNumeric {
			aNum, _ := strconv.Atoi(aChunk)
			bNum, _ := strconv.Atoi(bChunk)
			if aNum != bNum {
				return aNum < bNum
			}
		} else if aChunk != bChunk {
			return aChunk < bChunk
		}

		a, b = aRest, bRest
	}
	return len(a) < len(b)
}

func nextChunk(s string) (chunk, rest string, numeric bool) {
	numeric = unicode.IsDigit(rune(s[0]))
	for i, r := range s {
		if unicode.IsDigit(r) != numeric {
			return s[:i], s[i:], numeric
		}
	}
	return s, "", numeric
}
