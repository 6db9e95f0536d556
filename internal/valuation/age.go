package valuation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Age-hint parsing is deliberately heuristic: sellers type things like
// "ca 2 år", "6 months", "kjøpt 2021" or just "vintage". The parser is
// deterministic and side-effect-free so it can be tested on its own.

const (
	defaultAgeYears = 2.0
	vintageYears    = 20.0
	retroYears      = 15.0
)

var (
	monthsPattern   = regexp.MustCompile(`(\d+)\s*(months?|mnd|måned(?:er)?)`)
	yearsPattern    = regexp.MustCompile(`(\d+)\s*(years?|år)`)
	purchasePattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	newPattern      = regexp.MustCompile(`\b(brand new|helt ny|new|nytt?|ny|ubrukt|unused)\b`)
)

// ParseAge converts a free-text age hint into a year count. Norwegian
// and English forms of the same hint parse to the same value.
func ParseAge(hint string) float64 {
	return parseAgeAt(hint, time.Now().Year())
}

func parseAgeAt(hint string, currentYear int) float64 {
	text := strings.ToLower(strings.TrimSpace(hint))
	if text == "" {
		return defaultAgeYears
	}

	if newPattern.MatchString(text) {
		return 0
	}

	// Months before years: "18 months" must not match the year pattern.
	if m := monthsPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return float64(n) / 12
	}

	if m := yearsPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return float64(n)
	}

	if m := purchasePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		age := float64(currentYear - year)
		if age < 0 {
			age = 0
		}
		return age
	}

	if strings.Contains(text, "vintage") {
		return vintageYears
	}
	if strings.Contains(text, "retro") {
		return retroYears
	}

	return defaultAgeYears
}
