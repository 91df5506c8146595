package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"team-hub/errors"
)

//go:embed censored/*.txt
var censoredFolder embed.FS

// CensoredData carries the result of the loading process including metadata for logging.
type CensoredData struct {
	Words     []string
	Languages []string
}

// LoadEmbedded parses the embedded word lists, one .txt dictionary per
// language, into a unique list of words.
func LoadEmbedded() (*CensoredData, error) {
	entries, err := fs.ReadDir(censoredFolder, "censored")
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Track the language based on the filename (e.g., "fr.txt" -> "fr")
		lang := strings.TrimSuffix(entry.Name(), ".txt")
		languages = append(languages, lang)

		data, err := censoredFolder.ReadFile("censored/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// Use a scanner to handle different line endings (\n vs \r\n) correctly
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				uniqueWords[line] = struct{}{}
			}
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}

	return &CensoredData{
		Words:     words,
		Languages: languages,
	}, nil
}
