package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/printwizard/backend/internal/models"
)

// aliasMarker begins the alias block inside a board .cfg file. Additional
// blocks named aliases_<suffix> merge into the same map.
const aliasMarker = "aliases"

// BoardFile is the parsed content of one board definition file plus its
// optional metadata overlay.
type BoardFile struct {
	Name      string
	Source    string
	Toolboard bool
	MCUName   string
	Aliases   models.AliasMap
}

// boardOverlay is the optional YAML sidecar next to a board .cfg file.
type boardOverlay struct {
	Name      string `yaml:"name"`
	Source    string `yaml:"source"`
	Toolboard bool   `yaml:"toolboard"`
	MCUName   string `yaml:"mcu_name"`
}

// ExtractAliasBlock scans a board definition for its alias block and returns
// the merged alias map. Entries are comma/whitespace separated KEY=VALUE
// pairs; values starting with '<' are unresolved placeholders (e.g. <GND>)
// and are dropped. Malformed fragments are ignored; duplicate keys keep the
// last value. The only error is a source with no alias block at all.
func ExtractAliasBlock(r io.Reader) (models.AliasMap, error) {
	aliases := make(models.AliasMap)
	found := false
	inBlock := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		line = stripComment(line)
		if strings.TrimSpace(line) == "" {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		trimmed := strings.TrimSpace(line)

		if indented {
			// Continuation lines belong to the block opened above.
			if inBlock {
				parseAliasEntries(trimmed, aliases)
			}
			continue
		}

		inBlock = false
		key, rest, ok := splitConfigLine(trimmed)
		if !ok {
			continue
		}
		if key == aliasMarker || strings.HasPrefix(key, aliasMarker+"_") {
			found = true
			inBlock = true
			parseAliasEntries(rest, aliases)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no %s block found", aliasMarker)
	}
	return aliases, nil
}

// splitConfigLine splits "key: rest" or "key = rest".
func splitConfigLine(line string) (key, rest string, ok bool) {
	idx := strings.IndexAny(line, ":=")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// parseAliasEntries splits a fragment of the alias block into KEY=VALUE
// pairs and merges them into the map.
func parseAliasEntries(fragment string, aliases models.AliasMap) {
	for _, entry := range strings.Split(fragment, ",") {
		for _, pair := range strings.Fields(entry) {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			name := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			if name == "" || value == "" {
				continue
			}
			if strings.HasPrefix(value, "<") {
				continue // unresolved placeholder, e.g. <GND>
			}
			aliases[name] = value
		}
	}
}

// ParseBoardFile reads a board .cfg file from disk. The default board name
// is derived from the file name; an adjacent YAML file with the same
// basename overrides name, source, toolboard flag and mcu name.
func ParseBoardFile(path string) (*BoardFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening board file: %w", err)
	}
	defer f.Close()

	aliases, err := ExtractAliasBlock(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	bf := &BoardFile{
		Name:    BoardNameFromFile(filepath.Base(path)),
		Aliases: aliases,
	}

	overlayPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
	if data, err := os.ReadFile(overlayPath); err == nil {
		var ov boardOverlay
		if err := yaml.Unmarshal(data, &ov); err != nil {
			return nil, fmt.Errorf("parsing overlay %s: %w", filepath.Base(overlayPath), err)
		}
		if ov.Name != "" {
			bf.Name = ov.Name
		}
		bf.Source = ov.Source
		bf.Toolboard = ov.Toolboard
		bf.MCUName = ov.MCUName
	}

	return bf, nil
}

// BoardNameFromFile turns a file name into a display name: extension
// stripped, underscores as spaces.
func BoardNameFromFile(fileName string) string {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return strings.ReplaceAll(name, "_", " ")
}

// BoardCfgParser recognizes board definition .cfg files by their alias block.
type BoardCfgParser struct{}

func NewBoardCfgParser() *BoardCfgParser {
	return &BoardCfgParser{}
}

func (p *BoardCfgParser) Name() string {
	return "board_cfg"
}

func (p *BoardCfgParser) Kind() string {
	return models.FileKindBoardCfg
}

func (p *BoardCfgParser) CanParse(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	checked := 0
	for scanner.Scan() && checked < 200 {
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}
		checked++
		key, _, ok := splitConfigLine(line)
		if ok && (key == aliasMarker || strings.HasPrefix(key, aliasMarker+"_")) {
			return true, nil
		}
	}
	return false, scanner.Err()
}
