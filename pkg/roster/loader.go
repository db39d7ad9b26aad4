// Package roster loads candidate-name rosters that seed autocomplete
// channels: plain text files with one name per line, or msgpack binaries
// produced by Save.
package roster

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Roster is one channel's candidate set on disk.
type Roster struct {
	Trigger string   `msgpack:"trigger"`
	Names   []string `msgpack:"names"`
}

// maxNames is a sanity bound on binary rosters; anything larger is a
// corrupt or wrong file.
const maxNames = 1 << 20

// LoadFile reads a roster, detecting the format from the extension:
// .bin is msgpack, anything else is treated as plain text.
func LoadFile(path string) (*Roster, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".bin" {
		return loadBinary(path)
	}
	return loadText(path)
}

func loadBinary(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}

	var r Roster
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode roster %s: %w", path, err)
	}
	if len(r.Names) > maxNames {
		return nil, fmt.Errorf("suspicious name count in %s: %d (too large)", path, len(r.Names))
	}
	log.Debugf("Binary roster %s loaded: %d names", path, len(r.Names))
	return &r, nil
}

func loadText(path string) (*Roster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster %s: %w", path, err)
	}
	defer file.Close()

	r := &Roster{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r.Names = append(r.Names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}
	log.Debugf("Text roster %s loaded: %d names", path, len(r.Names))
	return r, nil
}

// Save writes a roster in the binary format LoadFile reads back.
func Save(r *Roster, path string) error {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write roster %s: %w", path, err)
	}
	return nil
}

// LoadDir loads every roster in a directory, keyed by trigger. Text
// rosters take their trigger from the file name stem.
func LoadDir(dir string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster dir %s: %w", dir, err)
	}

	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		r, err := LoadFile(path)
		if err != nil {
			log.Warnf("Skipping roster %s: %v", path, err)
			continue
		}
		trigger := r.Trigger
		if trigger == "" {
			trigger = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}
		out[trigger] = append(out[trigger], r.Names...)
	}
	return out, nil
}
