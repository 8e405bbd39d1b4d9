package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutPath(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{"https", "https://github.com/acme/habits.git", filepath.Join("repos", "github.com", "acme", "habits"), false},
		{"https without suffix", "https://gitlab.com/acme/habits", filepath.Join("repos", "gitlab.com", "acme", "habits"), false},
		{"scp-like", "git@github.com:acme/habits.git", filepath.Join("repos", "github.com", "acme", "habits"), false},
		{"missing path", "https://github.com", "", true},
		{"unsupported scheme", "ftp://example.com/acme/habits.git", "", true},
		{"plain word", "habits", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CheckoutPath("repos", tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSync_ExistingDirectoryIsNotARepo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte("version: 1\n"), 0o600))

	err := Sync(context.Background(), "https://example.invalid/acme/habits.git", dir, nil)
	assert.Error(t, err)
}

func TestSync_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := filepath.Join(t.TempDir(), "checkout")
	err := Sync(ctx, "https://example.invalid/acme/habits.git", target, nil)
	assert.Error(t, err)
}
