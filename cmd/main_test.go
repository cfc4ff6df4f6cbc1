package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigArgs(t *testing.T) {
	cases := []struct {
		args []string
		want []string
	}{
		{nil, nil},
		{[]string{"serve"}, nil},
		{[]string{"-c", "a.yml", "serve"}, []string{"-c", "a.yml"}},
		{[]string{"check", "--text", "--config", "b.yml"}, []string{"-c", "b.yml"}},
		{[]string{"watch", "/tmp/mail", "--config=c.yml"}, []string{"-c", "c.yml"}},
		{[]string{"serve", "-c"}, nil},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, configArgs(tc.args), "%v", tc.args)
	}
}

func TestReadURLs(t *testing.T) {
	URLs, err := readURLs(strings.NewReader("https://a.com\n\n# comment\n  https://b.com  \n"), false)
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.com", "https://b.com"}, URLs)

	URLs, err = readURLs(strings.NewReader("see https://a.com/x and http://b.com, or https://a.com/x"), true)
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.com/x", "http://b.com,"}, URLs)
}

func TestOriginChecker(t *testing.T) {
	require.Nil(t, originChecker(nil))
	require.Nil(t, originChecker([]string{"*"}))

	check := originChecker([]string{"chrome-extension://abc"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.True(t, check(req))
	req.Header.Set("Origin", "chrome-extension://abc")
	require.True(t, check(req))
	req.Header.Set("Origin", "https://evil.com")
	require.False(t, check(req))
}
