package llm

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// SanitizeAmount must either return a value that parses as a float with two
// fraction digits, or nil — never an unparseable string.

func TestProperty_SanitizeAmount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("output parses or is nil", prop.ForAll(
		func(raw string) bool {
			got := SanitizeAmount(raw)
			if got == nil {
				return true
			}
			_, err := strconv.ParseFloat(*got, 64)
			return err == nil
		},
		gen.AnyString(),
	))

	properties.Property("plain dollar figures survive with decorations", prop.ForAll(
		func(dollars int, cents int) bool {
			raw := "$" + strconv.Itoa(dollars) + "." + pad2(cents) + " NTE"
			got := SanitizeAmount(raw)
			want := strconv.Itoa(dollars) + "." + pad2(cents)
			return got != nil && *got == want
		},
		gen.IntRange(1, 999),
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
