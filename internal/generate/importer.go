package generate

import (
	"bufio"
	"strings"

	"github.com/printwizard/backend/internal/state"
)

// ImportResult summarizes one best-effort import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import reverse-parses firmware configuration text into state entries:
// "[section]" headers become key prefixes and "key: value" / "key = value"
// lines under them become "section.key" entries. Anything else (comments,
// continuation lines, lines outside a section) is counted as skipped. This
// is deliberately lossy; it exists to pre-fill the wizard from an existing
// config, not to round-trip one.
func Import(text string, st *state.Store) (*ImportResult, error) {
	result := &ImportResult{}
	values := make(map[string]string)
	section := ""

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		// Indented lines are multi-line values; skipped.
		if line[0] == ' ' || line[0] == '\t' {
			result.Skipped++
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			section = strings.ReplaceAll(section, " ", ".")
			continue
		}

		idx := strings.IndexAny(trimmed, ":=")
		if idx <= 0 || section == "" {
			result.Skipped++
			continue
		}
		key := strings.TrimSpace(trimmed[:idx])
		value := strings.TrimSpace(trimmed[idx+1:])
		if key == "" || value == "" {
			result.Skipped++
			continue
		}
		// Strip an inline comment off the value.
		if ci := strings.IndexAny(value, "#;"); ci > 0 {
			value = strings.TrimSpace(value[:ci])
		}
		values[section+"."+key] = value
		result.Imported++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(values) > 0 {
		if err := st.SetMany(values); err != nil {
			return nil, err
		}
	}
	return result, nil
}
