package lists_test

import (
	"os"
	"path/filepath"
	"testing"

	"phishguard/pkg/domain"
	"phishguard/pkg/lists"

	"github.com/stretchr/testify/require"
)

func TestWhitelist_ExactDomainOnly(t *testing.T) {
	w := lists.NewWhitelist([]string{
		"https://bank.example.com",
		"https://www.Trusted.org/login",
		"not a url",
		"bank.example.com",
	})

	require.Equal(t, 2, w.Size())
	require.Equal(t, 2, w.Skipped())

	require.True(t, w.Contains("bank.example.com"))
	require.True(t, w.Contains("trusted.org"))

	// no suffix or subdomain matching
	require.False(t, w.Contains("login.bank.example.com"))
	require.False(t, w.Contains("example.com"))
	require.False(t, w.Contains("evil-trusted.org"))
}

func TestWhitelist_Nil(t *testing.T) {
	var w *lists.Whitelist
	require.False(t, w.Contains("example.com"))
	require.Zero(t, w.Size())
}

func TestBlocklist_NormalizesEntries(t *testing.T) {
	b := lists.NewBlocklist([]string{"WWW.Evil.Example.", "https://www.phish.test/login", "  ", "tk"})

	require.True(t, b.Contains("evil.example"))
	require.True(t, b.Contains("phish.test"))
	require.Equal(t, 3, b.Size())
}

func TestBlocklist_ParentDomains(t *testing.T) {
	b := lists.NewBlocklist([]string{"evil.example.com", "tk"})

	require.True(t, b.Contains("evil.example.com"))
	require.True(t, b.Contains("login.evil.example.com"))
	require.True(t, b.Contains("a.b.evil.example.com"))

	require.False(t, b.Contains("example.com"))
	require.False(t, b.Contains("notevil.example.com"))
	// a bare TLD entry never matches through the parent walk
	require.False(t, b.Contains("phish.tk"))
	require.False(t, b.Contains(domain.Domain("")))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	wlPath := filepath.Join(dir, "whitelist.txt")
	blPath := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(wlPath, []byte("https://bank.example.com\n# comment\n"), 0o600))
	require.NoError(t, os.WriteFile(blPath, []byte("0.0.0.0 evil.example.com\n"), 0o600))

	w, err := lists.LoadWhitelist(wlPath)
	require.NoError(t, err)
	require.True(t, w.Contains("bank.example.com"))

	b, err := lists.LoadBlocklist(blPath, lists.FormatHostfile)
	require.NoError(t, err)
	require.True(t, b.Contains("evil.example.com"))

	empty, err := lists.LoadBlocklist("", lists.FormatDomainList)
	require.NoError(t, err)
	require.Zero(t, empty.Size())

	_, err = lists.LoadWhitelist(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}
