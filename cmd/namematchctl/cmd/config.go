package cmd

import (
	"os"
	"strings"
	"unicode"

	"github.com/gofrs/uuid"
	"gopkg.in/yaml.v3"

	"github.com/wallarm/namematch"
)

// fileConfig is namematchctl's on-disk YAML configuration. It mirrors
// namematch.EngineConfig but uses plain strings/ints so it serializes
// cleanly.
type fileConfig struct {
	NameIndexPath     string `yaml:"name_index_path"`
	NameIDIndexPath   string `yaml:"name_id_index_path"`
	EntityIDIndexPath string `yaml:"entity_id_index_path"`
	StopwordsPath     string `yaml:"stopwords_path"`
	MaxDirect         int    `yaml:"max_direct"`
	IndexFanoutCap    int    `yaml:"index_fanout_cap"`
	QueryCacheSize    int    `yaml:"query_cache_size"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c fileConfig) engineConfig(overwrite bool) namematch.EngineConfig {
	return namematch.EngineConfig{
		Backend:           namematch.BackendFile,
		NameIndexPath:     c.NameIndexPath,
		NameIDIndexPath:   c.NameIDIndexPath,
		EntityIDIndexPath: c.EntityIDIndexPath,
		StopwordsPath:     c.StopwordsPath,
		Overwrite:         overwrite,
		MaxDirect:         c.MaxDirect,
		IndexFanoutCap:    c.IndexFanoutCap,
		QueryCacheSize:    c.QueryCacheSize,
	}
}

// defaultCleaner upper-cases and collapses internal whitespace to a
// single ASCII space, the minimal normalization every corpus needs so
// tokenization behaves predictably.
var defaultCleaner = namematch.CleanerFunc(func(name string) string {
	fields := strings.Fields(strings.ToUpper(name))
	return strings.Join(fields, " ")
})

// defaultDistancer scales tolerance with word length: short words
// tolerate fewer edits, since a 1-edit typo in a 3-letter word changes
// it more than a 1-edit typo in a 10-letter word.
var defaultDistancer = namematch.DistancerFunc(func(word string) int {
	n := 0
	for _, r := range word {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
})

// validateUUIDLike reports whether s parses as a UUID. An empty string
// passes, since an empty name_id_guid is a deliberate "default to
// entity_id" signal rather than a malformed one; readRawRecords uses
// this to reject rows whose entity_id or name_id_guid is neither empty
// nor a well-formed UUID.
func validateUUIDLike(s string) bool {
	if s == "" {
		return true
	}
	_, err := uuid.FromString(s)
	return err == nil
}
