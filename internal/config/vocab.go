// Package config provides configuration management for statuswatch.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary defines the status-text vocabularies for one observation
// category: which status strings mean an explicit failure and which mean the
// work is still in progress (and therefore exempt from lookback filtering).
type Vocabulary struct {
	Category   string   `yaml:"category"`
	Failure    []string `yaml:"failure"`
	InProgress []string `yaml:"in_progress"`
}

// VocabulariesConfig is the root structure of a vocabularies YAML file.
type VocabulariesConfig struct {
	Vocabularies []Vocabulary `yaml:"vocabularies"`
}

// DefaultVocabularies returns the built-in status vocabularies. These match
// the status texts the monitored platform reports for jobs, agents, and the
// API health probe.
func DefaultVocabularies() []Vocabulary {
	return []Vocabulary{
		{
			Category:   "job",
			Failure:    []string{"error", "errored", "failed", "run failed", "cancelled with errors"},
			InProgress: []string{"processing", "running", "in progress", "staging", "waiting", "queued", "deleting"},
		},
		{
			Category: "agent",
			Failure:  []string{"disabled", "unhealthy"},
		},
		{
			Category: "lockbox",
		},
		{
			Category: "availability",
		},
	}
}

// LoadVocabularies reads category vocabularies from the specified YAML file.
// An empty path returns the built-in defaults.
func LoadVocabularies(path string) ([]Vocabulary, error) {
	if path == "" {
		return DefaultVocabularies(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("vocabularies file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabularies file: %w", err)
	}

	var cfg VocabulariesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse vocabularies file: %w", err)
	}

	if len(cfg.Vocabularies) == 0 {
		return nil, fmt.Errorf("no vocabularies defined in file: %s", path)
	}

	for i, v := range cfg.Vocabularies {
		if v.Category == "" {
			return nil, fmt.Errorf("vocabulary at index %d has no category", i)
		}
	}

	return cfg.Vocabularies, nil
}

// FindVocabulary returns the vocabulary for the given category, or an empty
// vocabulary if none is defined.
func FindVocabulary(vocabs []Vocabulary, category string) Vocabulary {
	for _, v := range vocabs {
		if v.Category == category {
			return v
		}
	}
	return Vocabulary{Category: category}
}
