package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestCredentialSetWireFormatUnmarshals(t *testing.T) {
	payload := `{
		"accessKeyId": "ASIAEXAMPLE",
		"secretAccessKey": "secret",
		"sessionToken": "token",
		"expiration": "2024-10-09T09:25:16Z"
	}`
	var cred AWSCredentials
	if err := json.Unmarshal([]byte(payload), &cred); err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	if cred.AccessKey != "ASIAEXAMPLE" || cred.SecretKey != "secret" || cred.SessionToken != "token" {
		t.Errorf("Unexpected credential values: %+v", cred)
	}
	if cred.Expiration.IsZero() {
		t.Error("Expiration should have been parsed")
	}
}

func TestExpiredCredentialsAreInvalid(t *testing.T) {
	cred := &AWSCredentials{
		AccessKey:  "ASIAEXAMPLE",
		SecretKey:  "secret",
		Expiration: time.Now().UTC().Add(-time.Minute),
	}
	if err := cred.IsValid(); !errors.Is(err, ErrExpiredAwsCredentials) {
		t.Errorf("Expected ErrExpiredAwsCredentials, got %v", err)
	}
	if _, err := cred.Retrieve(context.Background()); err == nil {
		t.Error("Should have gotten an error")
	}
}

func TestIncompleteCredentialsAreInvalid(t *testing.T) {
	cred := &AWSCredentials{AccessKey: "ASIAEXAMPLE"}
	if err := cred.IsValid(); !errors.Is(err, ErrIncompleteAwsCredentials) {
		t.Errorf("Expected ErrIncompleteAwsCredentials, got %v", err)
	}
}

func TestToAwsSDKCredentialsCarriesExpiry(t *testing.T) {
	expiration := time.Date(2024, 10, 9, 9, 25, 16, 0, time.UTC)
	sdkCred := ToAwsSDKCredentials(AWSCredentials{
		AccessKey:    "ASIAEXAMPLE",
		SecretKey:    "secret",
		SessionToken: "token",
		Expiration:   expiration,
	})
	if sdkCred.AccessKeyID != "ASIAEXAMPLE" || sdkCred.SecretAccessKey != "secret" || sdkCred.SessionToken != "token" {
		t.Errorf("Unexpected SDK credentials: %+v", sdkCred)
	}
	if !sdkCred.CanExpire || !sdkCred.Expires.Equal(expiration) {
		t.Errorf("Expiry information got lost: %+v", sdkCred)
	}
	if noExpiry := ToAwsSDKCredentials(AWSCredentials{AccessKey: "ASIAEXAMPLE", SecretKey: "secret"}); noExpiry.CanExpire {
		t.Error("Credentials without expiration must not be marked expirable")
	}
}

func TestRetrieveExposesSDKCredentials(t *testing.T) {
	expiration := time.Now().UTC().Add(time.Hour)
	cred := &AWSCredentials{
		AccessKey:    "ASIAEXAMPLE",
		SecretKey:    "secret",
		SessionToken: "token",
		Expiration:   expiration,
	}
	sdkCred, err := cred.Retrieve(context.Background())
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	if sdkCred.AccessKeyID != "ASIAEXAMPLE" || sdkCred.SecretAccessKey != "secret" || sdkCred.SessionToken != "token" {
		t.Errorf("Unexpected SDK credentials: %+v", sdkCred)
	}
	if !sdkCred.CanExpire || !sdkCred.Expires.Equal(expiration) {
		t.Errorf("Expiry information got lost: %+v", sdkCred)
	}
}
