package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/conorfennell/dailyhabit/internal/domain"
)

const (
	versionPrefix = "Version:"
	datePrefix    = "Date:"
	titlePrefix   = "Title:"
	bodyPrefix    = "Body:"
	separator     = "---"
)

type state int

const (
	seeking state = iota
	readingEntry
	readingBody
)

// Catalog is the content of a text catalog file.
type Catalog struct {
	Version int
	Items   []domain.BundledItem
}

// ParseFile reads a file from the given path and extracts the catalog.
func ParseFile(path string) (Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return Catalog{}, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts the catalog. Entries are
// separated by "---" lines:
//
//	Version: 3
//
//	Date: 2025-09-01
//	Title: Morning pages
//	Write three pages before breakfast.
//	---
//	Date: 2025-09-02
//	Title: Walk
//	Body: Twenty minutes outside.
//
// Fields may come in any order. Once the body has text, every line up to the
// next separator belongs to it. Parse does not validate field values.
func Parse(r io.Reader) (Catalog, error) {
	scanner := bufio.NewScanner(r)
	var catalog Catalog
	var currentItem domain.BundledItem
	var currentBody []string
	currentState := seeking
	lineNo := 0

	finishItem := func() {
		currentItem.Body = strings.Trim(strings.Join(currentBody, "\n"), "\n")
		currentBody = nil

		if currentItem.Title != "" || currentItem.ReleaseKey != "" || currentItem.Body != "" {
			catalog.Items = append(catalog.Items, currentItem)
		}
		currentItem = domain.BundledItem{}
		currentState = seeking
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == separator {
			finishItem()
			continue
		}

		if currentState == readingBody {
			// Until the body has text, header fields still count as fields.
			if blank(currentBody) {
				switch {
				case strings.HasPrefix(line, bodyPrefix):
					currentBody = nil
					if rest := fieldValue(line, bodyPrefix); rest != "" {
						currentBody = append(currentBody, rest)
					}
					continue
				case strings.HasPrefix(line, datePrefix) && currentItem.ReleaseKey == "":
					currentItem.ReleaseKey = fieldValue(line, datePrefix)
					continue
				case strings.HasPrefix(line, titlePrefix) && currentItem.Title == "":
					currentItem.Title = fieldValue(line, titlePrefix)
					continue
				}
			}
			currentBody = append(currentBody, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, versionPrefix):
			if currentState != seeking || len(catalog.Items) > 0 {
				return Catalog{}, fmt.Errorf("line %d: version header must come before the first entry", lineNo)
			}
			v, err := strconv.Atoi(fieldValue(line, versionPrefix))
			if err != nil || v < 0 {
				return Catalog{}, fmt.Errorf("line %d: invalid version %q", lineNo, fieldValue(line, versionPrefix))
			}
			catalog.Version = v
		case strings.HasPrefix(line, datePrefix):
			currentItem.ReleaseKey = fieldValue(line, datePrefix)
			currentState = readingEntry
		case strings.HasPrefix(line, titlePrefix):
			currentItem.Title = fieldValue(line, titlePrefix)
			currentState = readingBody
		case strings.HasPrefix(line, bodyPrefix):
			currentState = readingBody
			if rest := fieldValue(line, bodyPrefix); rest != "" {
				currentBody = append(currentBody, rest)
			}
		case strings.TrimSpace(line) == "":
			// Blank lines between fields are ignored
		default:
			if currentState == seeking && len(catalog.Items) == 0 {
				return Catalog{}, fmt.Errorf("line %d: unexpected text before the first entry", lineNo)
			}
			currentState = readingBody
			currentBody = append(currentBody, line)
		}
	}

	finishItem() // Finish the very last entry in the file

	if err := scanner.Err(); err != nil {
		return Catalog{}, err
	}

	return catalog, nil
}

func blank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

func fieldValue(line, prefix string) string {
	return strings.TrimSpace(line[len(prefix):])
}
