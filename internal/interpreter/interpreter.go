// Package interpreter turns transcribed spoken answers into numbers.
//
// Interpretation is total: every input yields an Answer, falling back to the
// normalized text when no number can be read from it.
package interpreter

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"spoken-answer/internal/domain"
)

const hundred = 100

var (
	digitPattern    = regexp.MustCompile(`-?[0-9]+(?:\.[0-9]+)?`)
	negationPattern = regexp.MustCompile(`\b(?:negative|minus)\b`)
)

// numberWords is read-only after package initialization.
var numberWords = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"twenty-one": 21, "twenty-two": 22, "twenty-three": 23, "twenty-four": 24,
	"twenty-five": 25, "twenty-six": 26, "twenty-seven": 27, "twenty-eight": 28,
	"twenty-nine": 29, "thirty": 30, "forty": 40, "fifty": 50, "sixty": 60,
	"seventy": 70, "eighty": 80, "ninety": 90, "hundred": hundred,
}

// Interpreter adapts Interpret to the application's interpreter port.
type Interpreter struct{}

func New() Interpreter {
	return Interpreter{}
}

func (Interpreter) Interpret(text string) domain.Answer {
	return Interpret(text)
}

// Interpret reads a numeric answer out of free-form transcript text.
//
// A digit sequence anywhere in the text wins over number words; only ASCII
// digits count, so other scripts' numerals pass through as text. Otherwise
// number words are summed, with "hundred" scaling what precedes it, and the
// result is negated if "negative" or "minus" appears anywhere. Text with no
// usable number (including a lone "zero" or a value beyond int64) is
// returned normalized.
func Interpret(text string) domain.Answer {
	normalized := Normalize(text)

	if answer, ok := parseDigits(normalized); ok {
		return answer
	}

	negative := negationPattern.MatchString(normalized)

	if answer, ok := parseExactWord(normalized, negative); ok {
		return answer
	}
	if answer, ok := parseCompound(normalized, negative); ok {
		return answer
	}

	return domain.TextAnswer(normalized)
}

// Normalize lowercases and trims text and drops one trailing '.', '!' or '?'.
func Normalize(text string) string {
	// Casers are not safe for concurrent use.
	text = strings.TrimSpace(cases.Lower(language.Und).String(text))
	if n := len(text); n > 0 {
		switch text[n-1] {
		case '.', '!', '?':
			text = text[:n-1]
		}
	}
	return text
}

func parseDigits(text string) (domain.Answer, bool) {
	match := digitPattern.FindString(text)
	if match == "" {
		return domain.Answer{}, false
	}

	if strings.Contains(match, ".") {
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return domain.Answer{}, false
		}
		return domain.FloatAnswer(f), true
	}

	i, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return domain.Answer{}, false
	}
	return domain.IntAnswer(i), true
}

func parseExactWord(text string, negative bool) (domain.Answer, bool) {
	v, ok := numberWords[text]
	if !ok {
		return domain.Answer{}, false
	}
	return domain.IntAnswer(sign(v, negative)), true
}

// parseCompound sums number words left to right. Only one group is ever
// completed since the table has no word above a hundred, so total only
// receives current once.
func parseCompound(text string, negative bool) (domain.Answer, bool) {
	var total, current int64

	for _, word := range strings.Fields(strings.ReplaceAll(text, "-", " ")) {
		v, ok := numberWords[word]
		if !ok {
			continue
		}

		if v == hundred {
			if current > math.MaxInt64/hundred {
				return domain.Answer{}, false
			}
			if current > 0 {
				current *= hundred
			} else {
				current = hundred
			}
			continue
		}
		if current > math.MaxInt64-v {
			return domain.Answer{}, false
		}
		current += v
	}

	total += current
	if total <= 0 {
		return domain.Answer{}, false
	}
	return domain.IntAnswer(sign(total, negative)), true
}

func sign(v int64, negative bool) int64 {
	if negative {
		return -v
	}
	return v
}
