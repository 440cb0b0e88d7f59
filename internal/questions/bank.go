// Package questions holds the interview question bank and the filename
// conventions that embed a question index and candidate into stored names.
package questions

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bank is an ordered list of question prompts, 1-indexed by convention.
type Bank struct {
	prompts []string
}

type bankFile struct {
	Questions []string `yaml:"questions"`
}

// Load reads the question bank from a YAML file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file %s: %w", path, err)
	}
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse questions file %s: %w", path, err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("questions file %s has no questions", path)
	}
	for i, q := range file.Questions {
		if strings.TrimSpace(q) == "" {
			return nil, fmt.Errorf("questions file %s: question %d is empty", path, i+1)
		}
	}
	return &Bank{prompts: file.Questions}, nil
}

// NewBank builds a bank from an in-memory prompt list.
func NewBank(prompts []string) *Bank {
	return &Bank{prompts: prompts}
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int { return len(b.prompts) }

// Prompt resolves a 1-based question index to its prompt text. An index
// outside the bank falls back to a generic placeholder, never an error.
func (b *Bank) Prompt(index int) string {
	if index >= 1 && index <= len(b.prompts) {
		return b.prompts[index-1]
	}
	if index >= 1 {
		return fmt.Sprintf("Interview question %d", index)
	}
	return "General interview question"
}

// Stored names embed the question index as "..._Question_3..." or "..._Q3..."
// (both seen from the recorder frontend), case-insensitive.
var indexPattern = regexp.MustCompile(`(?i)(?:^|[_/])q(?:uestion)?_?(\d+)`)

// ParseIndex extracts the embedded question index from a filename.
func ParseIndex(filename string) (int, bool) {
	m := indexPattern.FindStringSubmatch(filename)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Candidate extracts the candidate identifier: everything before the
// question token. Falls back to the whole stem when no token is present.
func Candidate(filename string) string {
	base := filename
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	stem := base
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	loc := indexPattern.FindStringIndex(stem)
	if loc == nil || loc[0] == 0 {
		return stem
	}
	return strings.TrimSuffix(stem[:loc[0]], "_")
}
