package cli

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`  "img1.png"  `, "img1.png"},
		{"'C:\\Users\\me\\a b.png'\r\n", "C:\\Users\\me\\a b.png"},
		{"\t/tmp/x.png\n", "/tmp/x.png"},
		{`""double.png""`, `"double.png"`},
		{`"mismatched.png'`, `"mismatched.png'`},
		{`"`, `"`},
		{`""`, ""},
		{"   ", ""},
		{" Q ", "Q"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeInput(tt.in), "input %q", tt.in)
	}
}

func TestIsQuit(t *testing.T) {
	assert.True(t, IsQuit("q"))
	assert.True(t, IsQuit("Q"))
	assert.False(t, IsQuit("quit"))
	assert.False(t, IsQuit(""))
	assert.False(t, IsQuit("q.png"))
}

func TestNormalizeInputProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	whitespace := gen.OneConstOf("", " ", "  \t", "\r\n", " \n\t ")
	quote := gen.OneConstOf(`"`, "'", "")

	properties.Property("strips surrounding whitespace and one quote layer", prop.ForAll(
		func(lead, q, body, trail string) bool {
			return NormalizeInput(lead+q+body+q+trail) == body
		},
		whitespace, quote, gen.Identifier(), whitespace,
	))

	properties.Property("only one layer of quotes is removed", prop.ForAll(
		func(q, body string) bool {
			return NormalizeInput(q+q+body+q+q) == q+body+q
		},
		gen.OneConstOf(`"`, "'"), gen.Identifier(),
	))

	properties.Property("normalized output never has surrounding whitespace without quotes", prop.ForAll(
		func(s string) bool {
			out := NormalizeInput(s)
			return out == strings.TrimSpace(out) || strings.ContainsAny(s, `"'`)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
