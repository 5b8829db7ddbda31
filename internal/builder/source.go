package builder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadRecords reads raw records from a file. Both a JSON array of
// objects and JSON-lines (one object per line) are accepted, since
// bibliographic dumps ship in either shape.
func LoadRecords(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	// Peek past leading whitespace to tell an array dump from JSON-lines.
	first, err := peekFirstByte(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	if first == '[' {
		var records []map[string]any
		if err := json.NewDecoder(reader).Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		return records, nil
	}

	var records []map[string]any
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return records, nil
}

func peekFirstByte(reader *bufio.Reader) (byte, error) {
	for {
		bytes, err := reader.Peek(1)
		if err != nil {
			return 0, err
		}
		switch bytes[0] {
		case ' ', '\t', '\n', '\r':
			if _, err := reader.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return bytes[0], nil
		}
	}
}
