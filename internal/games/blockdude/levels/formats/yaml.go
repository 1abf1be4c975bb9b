package formats

import (
	"fmt"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"gopkg.in/yaml.v3"
)

// ParseYAML parses and validates a YAML map file.
// The keys are the same as in the JSON format.
func ParseYAML(data []byte) (Level, error) {
	var fm FileMap
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return Level{}, core.ParseError(fmt.Errorf("yaml unmarshal: %w", err))
	}
	return fm.toLevel()
}

// EncodeYAML writes a level in the YAML map format.
func EncodeYAML(l Level) ([]byte, error) {
	data, err := yaml.Marshal(fromLevel(l))
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}
