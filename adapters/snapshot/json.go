package snapshot

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"loanlens/domain/loan"
)

// readJSON accepts an array of objects, a single object, or JSON lines
func readJSON(content []byte) (*RawData, error) {
	var items []gjson.Result

	if gjson.ValidBytes(content) {
		root := gjson.ParseBytes(content)
		switch {
		case root.IsArray():
			items = root.Array()
			if len(items) == 0 {
				// An empty array carries no columns to check
				return &RawData{Headers: append([]string(nil), loan.AllFields...), Rows: []RawRow{}}, nil
			}
		case root.IsObject():
			items = []gjson.Result{root}
		default:
			return nil, fmt.Errorf("JSON snapshot must be an array of objects")
		}
	} else {
		lines, err := jsonLines(content)
		if err != nil {
			return nil, err
		}
		items = lines
	}

	raw := &RawData{Rows: make([]RawRow, 0, len(items))}
	seen := make(map[string]bool)
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("JSON record %d is not an object", i+1)
		}
		row := make(RawRow)
		item.ForEach(func(key, value gjson.Result) bool {
			name := strings.TrimSpace(key.String())
			if !seen[name] {
				seen[name] = true
				raw.Headers = append(raw.Headers, name)
			}
			row[name] = jsonCell(value)
			return true
		})
		raw.Rows = append(raw.Rows, row)
	}
	return raw, nil
}

func jsonLines(content []byte) ([]gjson.Result, error) {
	var items []gjson.Result
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if !gjson.Valid(text) {
			return nil, fmt.Errorf("invalid JSON on line %d", line)
		}
		items = append(items, gjson.Parse(text))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan JSON lines: %w", err)
	}
	return items, nil
}

func jsonCell(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.Number:
		return value.Raw
	default:
		return strings.TrimSpace(value.String())
	}
}
