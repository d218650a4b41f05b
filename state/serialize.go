package state

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// ReadSimConfig reads a YAML config. Missing keys keep their defaults.
func ReadSimConfig(path string) (*SimCfg, error) {
	cfg := DefaultSimCfg()
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

func MarshalSimConfig(cfg SimCfg) ([]byte, error) {
	return yaml.Marshal(cfg)
}
