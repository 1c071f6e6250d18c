package interpreter_test

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"spoken-answer/internal/domain"
	"spoken-answer/internal/interpreter"
)

func TestInterpret(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  domain.Answer
	}{
		{name: "integer digits", input: "42", want: domain.IntAnswer(42)},
		{name: "negative decimal with unit", input: "-3.5 meters", want: domain.FloatAnswer(-3.5)},
		{name: "single word", input: "seven", want: domain.IntAnswer(7)},
		{name: "hyphenated exact word", input: "twenty-five", want: domain.IntAnswer(25)},
		{name: "spaced compound", input: "forty two", want: domain.IntAnswer(42)},
		{name: "hyphenated compound", input: "sixty-three", want: domain.IntAnswer(63)},
		{name: "negative word", input: "negative twelve", want: domain.IntAnswer(-12)},
		{name: "minus word", input: "minus eight", want: domain.IntAnswer(-8)},
		{name: "negation after number", input: "four is negative", want: domain.IntAnswer(-4)},
		{name: "negation word alone", input: "Minus", want: domain.TextAnswer("minus")},
		{name: "two hundred", input: "two hundred", want: domain.IntAnswer(200)},
		{name: "one hundred twenty", input: "one hundred twenty", want: domain.IntAnswer(120)},
		{name: "hundred alone", input: "hundred", want: domain.IntAnswer(100)},
		{name: "a hundred and five", input: "a hundred and five", want: domain.IntAnswer(105)},
		{name: "unknown words ignored", input: "the answer is seven", want: domain.IntAnswer(7)},
		{name: "passthrough", input: "the sky is blue", want: domain.TextAnswer("the sky is blue")},
		{name: "empty", input: "", want: domain.TextAnswer("")},
		{name: "whitespace only", input: "   ", want: domain.TextAnswer("")},
		{name: "case and punctuation", input: "  Nineteen!  ", want: domain.IntAnswer(19)},
		{name: "question mark stripped", input: "Is it blue?", want: domain.TextAnswer("is it blue")},
		{name: "only one trailing mark stripped", input: "Really?!", want: domain.TextAnswer("really?")},
		{name: "digits win over negation word", input: "negative 5 apples", want: domain.IntAnswer(5)},
		{name: "digits win over number words", input: "seven or 8", want: domain.IntAnswer(8)},
		{name: "first digit match", input: "12 then 13", want: domain.IntAnswer(12)},
		{name: "decimal digits", input: "It is 0.25.", want: domain.FloatAnswer(0.25)},
		{name: "zero word falls through", input: "zero", want: domain.TextAnswer("zero")},
		{name: "zero digit", input: "0", want: domain.IntAnswer(0)},
		{name: "negation without number", input: "negative", want: domain.TextAnswer("negative")},
		{name: "negation must be a whole word", input: "minuscule nine", want: domain.IntAnswer(9)},
		{name: "integer overflow falls back to words", input: "99999999999999999999 two", want: domain.IntAnswer(2)},
		{name: "largest repeated hundred", input: "one" + strings.Repeat(" hundred", 9), want: domain.IntAnswer(1_000_000_000_000_000_000)},
		{name: "repeated hundred overflow passes through", input: "one" + strings.Repeat(" hundred", 10), want: domain.TextAnswer("one" + strings.Repeat(" hundred", 10))},
		{name: "negative overflow passes through", input: "minus two" + strings.Repeat(" hundred", 12), want: domain.TextAnswer("minus two" + strings.Repeat(" hundred", 12))},
		{name: "non-ascii digits pass through", input: "٣", want: domain.TextAnswer("٣")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, interpreter.Interpret(tc.input))
		})
	}
}

func TestInterpret_ResultKinds(t *testing.T) {
	rq := require.New(t)

	answer := interpreter.Interpret("42")
	v, ok := answer.Int()
	rq.True(ok)
	rq.Equal(int64(42), v)

	answer = interpreter.Interpret("-3.5 meters")
	f, ok := answer.Float()
	rq.True(ok)
	rq.InDelta(-3.5, f, 1e-9)

	answer = interpreter.Interpret("the sky is blue")
	rq.Equal(domain.AnswerText, answer.Kind())
	rq.False(answer.IsNumber())
}

func TestInterpret_PassthroughIsStable(t *testing.T) {
	inputs := []string{
		"The sky is blue.",
		"  hello world  ",
		"What?",
		"",
		"NEGATIVE",
	}

	for _, input := range inputs {
		first := interpreter.Interpret(input)
		text, ok := first.Text()
		require.True(t, ok, input)

		require.Equal(t, first, interpreter.Interpret(text), input)
		require.Equal(t, text, interpreter.Normalize(text), input)
	}
}

func TestInterpret_DigitMatchIndependentOfContext(t *testing.T) {
	testCases := []struct {
		text  string
		match string
	}{
		{text: "i think it's 17 maybe twenty", match: "17"},
		{text: "about -2.75 degrees", match: "-2.75"},
		{text: "minus 3", match: "3"},
		{text: "room 101.", match: "101"},
	}

	for _, tc := range testCases {
		require.Equal(t, interpreter.Interpret(tc.match), interpreter.Interpret(tc.text), tc.text)
	}
}

func TestInterpreter_ConcurrentUse(t *testing.T) {
	in := interpreter.New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := in.Interpret("ninety-nine"); got != domain.IntAnswer(99) {
					t.Errorf("got %v, want 99", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestInterpret_WholeFloatSurvivesJSON(t *testing.T) {
	rq := require.New(t)

	answer := interpreter.Interpret("2.0")
	rq.Equal(domain.FloatAnswer(2), answer)

	data, err := json.Marshal(answer)
	rq.NoError(err)

	var decoded domain.Answer
	rq.NoError(json.Unmarshal(data, &decoded))
	rq.Equal(domain.AnswerFloat, decoded.Kind())
	rq.Equal(answer, decoded)
}
