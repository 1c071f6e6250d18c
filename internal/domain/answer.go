package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type AnswerKind string

const (
	AnswerInt   AnswerKind = "int"
	AnswerFloat AnswerKind = "float"
	AnswerText  AnswerKind = "text"
)

// TextAnswerPrefix is the marker used to indicate text answers (vs audio)
const TextAnswerPrefix = "__TEXT__:"

// Answer is the interpreted value of a spoken answer. Exactly one of the
// integer, float or text variants is set, as reported by Kind.
type Answer struct {
	kind AnswerKind
	i    int64
	f    float64
	text string
}

func IntAnswer(v int64) Answer {
	return Answer{kind: AnswerInt, i: v}
}

func FloatAnswer(v float64) Answer {
	return Answer{kind: AnswerFloat, f: v}
}

func TextAnswer(s string) Answer {
	return Answer{kind: AnswerText, text: s}
}

// Kind defaults to AnswerText for the zero Answer.
func (a Answer) Kind() AnswerKind {
	if a.kind == "" {
		return AnswerText
	}
	return a.kind
}

func (a Answer) IsNumber() bool {
	k := a.Kind()
	return k == AnswerInt || k == AnswerFloat
}

func (a Answer) Int() (int64, bool) {
	return a.i, a.Kind() == AnswerInt
}

func (a Answer) Float() (float64, bool) {
	return a.f, a.Kind() == AnswerFloat
}

func (a Answer) Text() (string, bool) {
	return a.text, a.Kind() == AnswerText
}

// Value returns the answer as int64, float64 or string.
func (a Answer) Value() any {
	switch a.Kind() {
	case AnswerInt:
		return a.i
	case AnswerFloat:
		return a.f
	default:
		return a.text
	}
}

func (a Answer) String() string {
	switch a.Kind() {
	case AnswerInt:
		return strconv.FormatInt(a.i, 10)
	case AnswerFloat:
		return strconv.FormatFloat(a.f, 'f', -1, 64)
	default:
		return a.text
	}
}

// Matches reports whether the answer equals any of the accepted answers.
// Comparison is on the lowercased string form, with and without hyphens.
func (a Answer) Matches(expected ...string) bool {
	got := strings.ToLower(strings.TrimSpace(a.String()))
	gotNoHyphen := strings.ReplaceAll(got, "-", "")

	for _, e := range expected {
		want := strings.ToLower(strings.TrimSpace(e))
		if want == got || want == gotNoHyphen {
			return true
		}
		if a.IsNumber() {
			if f, err := strconv.ParseFloat(want, 64); err == nil && f == a.asFloat() {
				return true
			}
		}
	}
	return false
}

func (a Answer) asFloat() float64 {
	if a.Kind() == AnswerInt {
		return float64(a.i)
	}
	return a.f
}

// MarshalJSON writes floats with a decimal point so they decode back as
// floats even when they have no fractional part.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Kind() != AnswerFloat {
		return json.Marshal(a.Value())
	}
	if math.IsInf(a.f, 0) || math.IsNaN(a.f) {
		return nil, fmt.Errorf("unsupported float answer: %v", a.f)
	}
	s := strconv.FormatFloat(a.f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return []byte(s), nil
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = TextAnswer(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			*a = IntAnswer(i)
			return nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*a = FloatAnswer(f)
	return nil
}
