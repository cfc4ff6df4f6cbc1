package orchestrator_test

import (
	"testing"

	"phishguard/internal/orchestrator"

	"github.com/stretchr/testify/require"
)

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "hello, nothing to see", nil},
		{"empty", "", nil},
		{
			"dedupe keeps first appearance",
			"see https://b.com then http://a.com and https://b.com again, finally https://c.com",
			[]string{"https://b.com", "http://a.com", "https://c.com"},
		},
		{
			"stops at quotes and brackets",
			`<a href="https://x.com/path?q=1">link</a> 'https://y.com'`,
			[]string{"https://x.com/path?q=1", "https://y.com"},
		},
		{"case-insensitive scheme", "HTTPS://LOUD.example/X", []string{"HTTPS://LOUD.example/X"}},
		{"needs word boundary", "xhttps://glued.example", nil},
		{"ftp is not matched", "ftp://files.example", nil},
		{"trailing punctuation is kept", "visit https://a.com.", []string{"https://a.com."}},
		{"line breaks split", "https://a.com\nhttps://b.com", []string{"https://a.com", "https://b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, orchestrator.ExtractURLs(tt.text))
		})
	}
}
