package slackbot

import (
	"errors"
	"fmt"

	"github.com/guaranteeops/reconbot/utils"
	"sigs.k8s.io/yaml"
)

// AmountField describes one decimal input of the report request modal.
type AmountField struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
}

// ReportConfig drives the bot surface: which channels get the entry button,
// what the modal looks like and where notifications go. It comes from a
// YAML file so changing a field label does not need a rebuild.
type ReportConfig struct {
	Title           string        `json:"title"`
	EntryMessage    string        `json:"entryMessage"`
	EntryButtonText string        `json:"entryButtonText"`
	Channels        []string      `json:"channels"`
	AmountFields    []AmountField `json:"amountFields"`
	WebhookURL      string        `json:"webhookUrl,omitempty"`
}

var ErrInvalidReportConfig = errors.New("invalid report config")

func LoadReportConfig(filePath string) (*ReportConfig, error) {
	raw, err := utils.ReadFileFull(filePath)
	if err != nil {
		return nil, err
	}
	var cfg ReportConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse report config %s: %w", filePath, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *ReportConfig) validate() error {
	if cfg.Title == "" {
		cfg.Title = "Reconciliation bot"
	}
	if cfg.EntryButtonText == "" {
		cfg.EntryButtonText = "Enter data"
	}
	if len(cfg.Channels) == 0 {
		return fmt.Errorf("%w: at least one channel is required", ErrInvalidReportConfig)
	}
	if len(cfg.AmountFields) == 0 {
		return fmt.Errorf("%w: at least one amount field is required", ErrInvalidReportConfig)
	}
	seen := make(map[string]bool)
	for _, field := range cfg.AmountFields {
		if field.ID == "" || field.Label == "" {
			return fmt.Errorf("%w: amount fields need both id and label", ErrInvalidReportConfig)
		}
		if seen[field.ID] {
			return fmt.Errorf("%w: duplicate amount field id %s", ErrInvalidReportConfig, field.ID)
		}
		seen[field.ID] = true
	}
	return nil
}
