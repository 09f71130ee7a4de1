package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizePemRestoresEscapedNewlines(t *testing.T) {
	in := `-----BEGIN CERTIFICATE-----\nMIIB\nAQAB\n-----END CERTIFICATE-----\n`
	expected := "-----BEGIN CERTIFICATE-----\nMIIB\nAQAB\n-----END CERTIFICATE-----\n"
	if got := NormalizePem(in); got != expected {
		t.Errorf("Got %q, expected %q", got, expected)
	}
}

func TestNormalizePemSplitsSingleLineBlob(t *testing.T) {
	in := "-----BEGIN CERTIFICATE----- MIIBAQAB -----END CERTIFICATE-----"
	got := NormalizePem(in)
	if !strings.Contains(got, "-----BEGIN CERTIFICATE-----\n") {
		t.Errorf("Header not restored: %q", got)
	}
	if !strings.Contains(got, "\n-----END CERTIFICATE-----") {
		t.Errorf("Footer not restored: %q", got)
	}
}

func TestNormalizePemLeavesWellFormedInputAlone(t *testing.T) {
	in := "-----BEGIN CERTIFICATE-----\nMIIBAQAB\n-----END CERTIFICATE-----\n"
	if got := NormalizePem(in); got != in {
		t.Errorf("Got %q, expected input unchanged", got)
	}
}

func TestCertificateChainFromPemEmptyInput(t *testing.T) {
	if _, err := CertificateChainFromPem([]byte("plain text")); !errors.Is(err, ErrNoPemData) {
		t.Errorf("Expected ErrNoPemData, got %v", err)
	}
}

func TestSignerFromPemEmptyInput(t *testing.T) {
	if _, err := SignerFromPem([]byte("")); !errors.Is(err, ErrNoPemData) {
		t.Errorf("Expected ErrNoPemData, got %v", err)
	}
}
