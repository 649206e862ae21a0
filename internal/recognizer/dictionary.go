package recognizer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Charset is the ordered recognition dictionary. Entry i corresponds to
// model class index i+1; class index 0 is reserved for the CTC blank.
type Charset struct {
	chars []string
}

// NewCharset builds a charset from an ordered list of dictionary entries.
func NewCharset(chars []string) *Charset {
	return &Charset{chars: append([]string(nil), chars...)}
}

// DefaultCharset covers seven-segment scale displays: digits, decimal point
// and the letters appearing in weight unit tokens.
func DefaultCharset() *Charset {
	chars := strings.Split("0123456789.", "")
	chars = append(chars, strings.Split("bgijklnoz", "")...)
	return NewCharset(chars)
}

// LoadCharset reads a dictionary file with one entry per line. Empty lines
// are skipped; a lone space line denotes the space character.
func LoadCharset(path string) (*Charset, error) {
	if path == "" {
		return nil, errors.New("dictionary path cannot be empty")
	}
	f, err := os.Open(path) //nolint:gosec // G304: user-provided dictionary path is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer func() { _ = f.Close() }()

	var chars []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		chars = append(chars, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("dictionary %s is empty", path)
	}
	return NewCharset(chars), nil
}

// Size returns the number of dictionary entries (excluding the blank).
func (c *Charset) Size() int { return len(c.chars) }

// Char maps a model class index to its dictionary entry. Class 0 (blank) and
// indices beyond the dictionary report ok=false.
func (c *Charset) Char(classIndex int) (string, bool) {
	i := classIndex - 1
	if i < 0 || i >= len(c.chars) {
		return "", false
	}
	return c.chars[i], true
}
