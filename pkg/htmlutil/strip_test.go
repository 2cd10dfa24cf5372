package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text keeps its layout", "First line\n\n  indented", "First line\n\n  indented"},
		{"paragraphs", "<p>First paragraph</p><p>Second paragraph</p>", "First paragraph\nSecond paragraph"},
		{"line breaks", "One<br>Two<br/>Three", "One\nTwo\nThree"},
		{"inline tags", "<b>Bold</b>  and   <i>italic</i>", "Bold and italic"},
		{"entities", "Fish &amp; Chips &lt;3", "Fish & Chips <3"},
		{"non-breaking spaces collapse", "a&nbsp;&nbsp;b", "a b"},
		{"script is dropped", "<script>alert('x')</script>Safe", "Safe"},
		{"style is dropped", "<style>p { color: red }</style><p>Text</p>", "Text"},
		{"list items", "<ul><li>One</li><li>Two</li></ul>", "One\nTwo"},
		{"unclosed tag", "Text <b>bold", "Text bold"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, StripTags(tc.input))
		})
	}
}
