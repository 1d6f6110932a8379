/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/

// Package config loads and validates the tunables of the B-tree, the
// priority queue, and the parallel search driver.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for a multicrit run.
type Config struct {
	BTree   BTree   `yaml:"btree"`
	Search  Search  `yaml:"search"`
	Logging Logging `yaml:"logging"`
}

// BTree holds the weight-balanced bulk-update B-tree's tuning constants.
type BTree struct {
	LeafParameterK      int  `yaml:"leaf_parameter_k"`
	BranchingParameterB int  `yaml:"branching_parameter_b"`
	RewriteThreshold    int  `yaml:"rewrite_threshold"`
	BatchSize           int  `yaml:"batch_size"`
	SelfVerify          bool `yaml:"selfverify"`
}

// Search holds the parallel label-setting driver's tunables.
type Search struct {
	Workers      int  `yaml:"workers"`
	MinGrain     int  `yaml:"min_grain"`
	GatherStats  bool `yaml:"gather_stats"`
	UseTreeLabel bool `yaml:"use_tree_labelset"`
}

// Logging contains logging/verbosity configuration.
type Logging struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns a configuration with sane defaults, mirroring the
// original's compile-time defaults (LEAF_PARAMETER_K=64,
// BRANCHING_PARAMETER_B=32 for label sets; wider for the priority queue is
// left to callers who construct a second Config for pkg/pqueue).
func DefaultConfig() *Config {
	return &Config{
		BTree: BTree{
			LeafParameterK:      64,
			BranchingParameterB: 32,
			RewriteThreshold:    1024,
			BatchSize:           256,
			SelfVerify:          false,
		},
		Search: Search{
			Workers:      runtime.NumCPU(),
			MinGrain:     64,
			GatherStats:  false,
			UseTreeLabel: false,
		},
		Logging: Logging{
			Verbose: false,
		},
	}
}

// LoadConfig loads configuration from the specified YAML path.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects B-tree parameters too small to maintain the tree's
// weight invariants.
func (c *Config) Validate() error {
	if c.BTree.LeafParameterK < 8 {
		return fmt.Errorf("leaf_parameter_k must be >= 8, got %d", c.BTree.LeafParameterK)
	}
	if c.BTree.BranchingParameterB < 4 {
		return fmt.Errorf("branching_parameter_b must be >= 4, got %d", c.BTree.BranchingParameterB)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Search.Workers)
	}
	return nil
}

// randomHex returns a random hex token of 2*n characters, used by
// RandomRunID.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RandomRunID mints a short random identifier for tagging a benchmark run.
func RandomRunID() (string, error) {
	return randomHex(8)
}
