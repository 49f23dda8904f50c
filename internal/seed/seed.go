// Package seed provides the line the map shows before any user input.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/transit-map/backend/internal/domain"
)

//go:embed u9.yaml
var u9YAML []byte

// U9 returns the embedded Berlin U9 line.
func U9() (domain.Line, error) {
	line, err := Parse(bytes.NewReader(u9YAML))
	if err != nil {
		return domain.Line{}, fmt.Errorf("seed.U9: %w", err)
	}
	return line, nil
}

// Load returns the line in the YAML file at path, or U9 when path is empty.
func Load(path string) (domain.Line, error) {
	if path == "" {
		return U9()
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Line{}, fmt.Errorf("seed.Load: %w", err)
	}
	defer f.Close()

	line, err := Parse(f)
	if err != nil {
		return domain.Line{}, fmt.Errorf("seed.Load %s: %w", path, err)
	}
	return line, nil
}

// Parse decodes a single line document. Unknown keys are rejected.
func Parse(r io.Reader) (domain.Line, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var line domain.Line
	if err := dec.Decode(&line); err != nil {
		return domain.Line{}, fmt.Errorf("decode: %w", err)
	}
	return line, nil
}
