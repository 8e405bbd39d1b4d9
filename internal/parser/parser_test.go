package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/conorfennell/dailyhabit/internal/domain"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedVersion int
		expectedItems   []domain.BundledItem
	}{
		{
			name:          "Single entry",
			input:         "Date: 2025-09-01\nTitle: Morning pages\nWrite three pages.",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-01", Title: "Morning pages", Body: "Write three pages."}},
		},
		{
			name: "Version header and two entries",
			input: `
Version: 3

Date: 2025-09-01
Title: First
Body: first body
---
Date: 2025-09-02
Title: Second
second body
`,
			expectedVersion: 3,
			expectedItems: []domain.BundledItem{
				{ReleaseKey: "2025-09-01", Title: "First", Body: "first body"},
				{ReleaseKey: "2025-09-02", Title: "Second", Body: "second body"},
			},
		},
		{
			name: "Multiline body keeps inner blank lines",
			input: `Date: 2025-09-01
Title: Walk
Go outside.

Twenty minutes is enough.
Date: is not a field once the body started
`,
			expectedItems: []domain.BundledItem{{
				ReleaseKey: "2025-09-01",
				Title:      "Walk",
				Body:       "Go outside.\n\nTwenty minutes is enough.\nDate: is not a field once the body started",
			}},
		},
		{
			name:          "Title before date",
			input:         "Title: Stretch\nDate: 2025-09-03\n---\n",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-03", Title: "Stretch"}},
		},
		{
			name:          "Title before date with body",
			input:         "Title: Walk\nDate: 2025-09-01\nBody: x",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-01", Title: "Walk", Body: "x"}},
		},
		{
			name:          "Blank line before body field",
			input:         "Date: 2025-09-01\nTitle: Walk\n\nBody: Twenty minutes outside.",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-01", Title: "Walk", Body: "Twenty minutes outside."}},
		},
		{
			name:          "Body field before title",
			input:         "Date: 2025-09-01\nBody:\nTitle: Walk\nOutside.",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-01", Title: "Walk", Body: "Outside."}},
		},
		{
			name:          "Second date in body is text",
			input:         "Date: 2025-09-01\nTitle: Walk\nDate: 2025-09-02",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-01", Title: "Walk", Body: "Date: 2025-09-02"}},
		},
		{
			name:          "Fields without space",
			input:         "Date:2025-09-01\nTitle:Tea",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-01", Title: "Tea"}},
		},
		{
			name:          "CRLF line endings",
			input:         "Date: 2025-09-01\r\nTitle: Tea\r\nGreen tea.\r\n",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-01", Title: "Tea", Body: "Green tea."}},
		},
		{
			name:          "Empty entries between separators are skipped",
			input:         "---\n---\nDate: 2025-09-01\nTitle: Tea\n---\n\n---",
			expectedItems: []domain.BundledItem{{ReleaseKey: "2025-09-01", Title: "Tea"}},
		},
		{
			name:  "Empty input",
			input: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			catalog, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			if catalog.Version != tc.expectedVersion {
				t.Errorf("Expected version %d, but got %d", tc.expectedVersion, catalog.Version)
			}
			if diff := cmp.Diff(tc.expectedItems, catalog.Items); diff != "" {
				t.Errorf("Items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"Bad version", "Version: three\nDate: 2025-09-01\nTitle: Tea"},
		{"Negative version", "Version: -1"},
		{"Version after entry", "Date: 2025-09-01\nTitle: Tea\n---\nVersion: 2"},
		{"Stray text before first entry", "hello\nDate: 2025-09-01\nTitle: Tea"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.input)); err == nil {
				t.Errorf("Expected an error for input %q, but got none", tc.input)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.txt")
	if err := os.WriteFile(path, []byte("Version: 1\nDate: 2025-09-01\nTitle: Tea\n"), 0o600); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	catalog, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}
	if catalog.Version != 1 || len(catalog.Items) != 1 {
		t.Errorf("Expected version 1 with 1 item, but got %+v", catalog)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected an error for a missing file, but got none")
	}
}
