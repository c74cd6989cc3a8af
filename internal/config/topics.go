package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ObiAU/syncview/internal/recommend"
)

type topicsFile struct {
	Topics []recommend.Topic `yaml:"topics"`
}

// LoadTopics builds the topic index from a YAML file of the form
//
//	topics:
//	  - name: 경제
//	    keywords: [economy, market]
//
// An empty path selects the built-in taxonomy.
func LoadTopics(path string) (*recommend.Index, error) {
	if path == "" {
		return recommend.DefaultIndex(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}

	var file topicsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse topics file %s: %w", path, err)
	}
	if len(file.Topics) == 0 {
		return nil, fmt.Errorf("topics file %s defines no topics", path)
	}

	index, err := recommend.NewIndex(file.Topics)
	if err != nil {
		return nil, fmt.Errorf("invalid topics file %s: %w", path, err)
	}

	return index, nil
}
