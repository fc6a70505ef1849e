// Package goquery implements the markup extraction core for nhatot listing
// pages: locating the repeating item fragments on a page and turning each
// fragment into a structured listing.
package goquery

import (
	"regexp"
	"strings"
)

// Bullet is the separator nhatot uses between descriptor parts,
// e.g. "Nhà ở • 2 PN • Hướng Đông" or "Quan 1 • 2 ngày trước".
const Bullet = "•"

var (
	// Word boundaries are ASCII-only in regexp, so the Vietnamese keywords
	// are matched as plain alternations, longest first.
	priceRE    = regexp.MustCompile(`\d[\d.,]*\s*(tỷ|triệu|₫|đ)`)
	areaRE     = regexp.MustCompile(`\d[\d.,]*\s*(m²|m2)`)
	compassRE  = regexp.MustCompile(`(Đông Bắc|Đông Nam|Tây Bắc|Tây Nam|Đông|Tây|Nam|Bắc)`)
	huongPre   = "Hướng "
	whitespace = regexp.MustCompile(`\s+`)
)

// SplitBullet splits bullet-separated text into trimmed, non-empty parts.
func SplitBullet(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, Bullet) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// SplitLocationDate splits a bullet-separated "location • posted date" pair.
// Without a separator the whole text is the location and the date is empty.
func SplitLocationDate(s string) (location, postedDate string) {
	parts := SplitBullet(s)
	if len(parts) > 0 {
		location = parts[0]
	}
	if len(parts) > 1 {
		postedDate = parts[1]
	}
	if len(parts) == 0 {
		location = strings.TrimSpace(s)
	}
	return location, postedDate
}

// CountBefore extracts the number immediately preceding a unit keyword,
// e.g. CountBefore("2 PN", "PN") returns ("2", true).
func CountBefore(s, unit string) (string, bool) {
	re := regexp.MustCompile(`(\d+)\s*` + regexp.QuoteMeta(unit))
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Direction reports whether the text names a compass facing and returns it
// with the "Hướng " prefix stripped.
func Direction(s string) (string, bool) {
	if !compassRE.MatchString(s) {
		return "", false
	}
	return strings.TrimSpace(strings.ReplaceAll(s, huongPre, "")), true
}

// PriceLike reports whether the text looks like a displayed price
// (a number followed by a Vietnamese currency keyword).
func PriceLike(s string) bool {
	return priceRE.MatchString(s)
}

// AreaLike reports whether the text looks like a displayed area
// (a number followed by a square-meter unit).
func AreaLike(s string) bool {
	return areaRE.MatchString(s)
}

// collapseSpace normalizes runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
