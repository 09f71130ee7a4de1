package slackbot

import (
	"errors"
	"testing"

	"github.com/guaranteeops/reconbot/testutils"
)

var testReportConfigYaml = `
title: Daily reconciliation
entryMessage: "A new report is ready, enter the balances to run it."
entryButtonText: Enter balances
channels:
  - C0123456789
  - C9876543210
amountFields:
  - id: bank_balance
    label: Bank balance
    placeholder: Closing balance of the statement
  - id: ledger_balance
    label: Ledger balance
webhookUrl: https://hooks.slack.com/services/T000/B000/XXXX
`

func TestLoadReportConfig(t *testing.T) {
	fileName := testutils.TempYamlFile(t, testReportConfigYaml)
	cfg, err := LoadReportConfig(fileName)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	if cfg.Title != "Daily reconciliation" {
		t.Errorf("Got %s, expected Daily reconciliation", cfg.Title)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[1] != "C9876543210" {
		t.Errorf("Unexpected channels: %v", cfg.Channels)
	}
	if len(cfg.AmountFields) != 2 || cfg.AmountFields[0].ID != "bank_balance" {
		t.Errorf("Unexpected amount fields: %v", cfg.AmountFields)
	}
	if cfg.AmountFields[1].Placeholder != "" {
		t.Errorf("Placeholder should be optional, got %s", cfg.AmountFields[1].Placeholder)
	}
}

func TestLoadReportConfigFillsDefaults(t *testing.T) {
	fileName := testutils.TempYamlFile(t, `
channels: [C0123456789]
amountFields:
  - id: bank_balance
    label: Bank balance
`)
	cfg, err := LoadReportConfig(fileName)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	if cfg.Title == "" || cfg.EntryButtonText == "" {
		t.Errorf("Defaults not applied: %+v", cfg)
	}
}

func TestLoadReportConfigRejectsInvalid(t *testing.T) {
	testCases := []struct {
		description string
		yaml        string
	}{
		{"no channels", "amountFields: [{id: a, label: A}]"},
		{"no amount fields", "channels: [C0123456789]"},
		{"field without label", "channels: [C0123456789]\namountFields: [{id: a}]"},
		{"duplicate field id", "channels: [C0123456789]\namountFields: [{id: a, label: A}, {id: a, label: B}]"},
	}
	for _, tc := range testCases {
		fileName := testutils.TempYamlFile(t, tc.yaml)
		if _, err := LoadReportConfig(fileName); !errors.Is(err, ErrInvalidReportConfig) {
			t.Errorf("Case %s: expected ErrInvalidReportConfig, got %v", tc.description, err)
		}
	}
}
