// Package faq loads the static FAQ list the routing engine answers from.
package faq

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashureev/helpdesk-bot/internal/domain"
	"gopkg.in/yaml.v3"
)

// Samples are written by faqctl init when no FAQ file exists.
var Samples = []domain.FAQEntry{
	{
		Question: "How do I cancel my subscription?",
		Answer:   "You can cancel your subscription from the 'Billing' section in your account settings. Cancellations take effect at the end of your billing cycle.",
	},
	{
		Question: "What are your business hours?",
		Answer:   "Our customer support is available Monday to Friday, 9 AM to 6 PM EST.",
	},
}

// ErrExists is returned by WriteSamples when the target file already exists.
var ErrExists = errors.New("faq file already exists")

// Read parses the FAQ file at path. JSON is the default format; .yaml and
// .yml files are parsed as YAML.
func Read(path string) ([]domain.FAQEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []domain.FAQEntry
	if isYAML(path) {
		err = yaml.Unmarshal(data, &entries)
	} else {
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := entries[:0]
	for _, e := range entries {
		if strings.TrimSpace(e.Question) == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Load reads the FAQ list once at startup. A missing or malformed file
// yields an empty list so no FAQ ever matches.
func Load(path string, logger *slog.Logger) []domain.FAQEntry {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("No FAQs file found", "path", path)
		return []domain.FAQEntry{}
	}
	if err != nil {
		logger.Warn("Failed to load FAQs", "path", path, "error", err)
		return []domain.FAQEntry{}
	}
	logger.Info("FAQs loaded", "path", path, "count", len(entries))
	return entries
}

// WriteSamples writes Samples to path, creating parent directories. It never
// overwrites an existing file.
func WriteSamples(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create faq directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(Samples)
	} else {
		data, err = json.MarshalIndent(Samples, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode samples: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
