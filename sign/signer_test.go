package sign_test

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/guaranteeops/reconbot/sign"
	"github.com/guaranteeops/reconbot/testutils"
)

func TestCredentialScope(t *testing.T) {
	scope := sign.CredentialScope(testSigningTime, "us-east-1", "rolesanywhere")
	expected := "20241009/us-east-1/rolesanywhere/aws4_request"
	if scope != expected {
		t.Errorf("Got %s, expected %s", scope, expected)
	}
}

func TestStringToSignMatchesFixture(t *testing.T) {
	//sha256("abc") is a well known vector
	const sha256abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	stringToSign := sign.StringToSign(
		"abc",
		testSigningTime,
		sign.AlgorithmRSA,
		sign.CredentialScope(testSigningTime, "us-east-1", "rolesanywhere"),
	)
	expected := "AWS4-X509-RSA-SHA256\n" +
		"20241009T082516Z\n" +
		"20241009/us-east-1/rolesanywhere/aws4_request\n" +
		sha256abc
	if stringToSign != expected {
		t.Errorf("+Expected <> -Calculated:\n\t+%q\n\t-%q", expected, stringToSign)
	}
}

func TestRSASignatureIsDeterministicAndVerifies(t *testing.T) {
	cert, key := testutils.GenerateRSAIdentity(t)
	signingKey, err := sign.NewSigningKey(cert, key)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}

	stringToSign := "test-string-to-sign"
	first, err := sign.Sign(stringToSign, signingKey)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	second, err := sign.Sign(stringToSign, signingKey)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	if !bytes.Equal(first, second) {
		t.Error("PKCS#1 v1.5 signatures over the same input must be byte identical")
	}

	digest := sha256.Sum256([]byte(stringToSign))
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], first); err != nil {
		t.Errorf("Signature does not verify: %s", err)
	}
}

func TestECDSASignatureVerifies(t *testing.T) {
	cert, key := testutils.GenerateECIdentity(t)
	signingKey, err := sign.NewSigningKey(cert, key)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}

	stringToSign := "test-string-to-sign"
	signature, err := sign.Sign(stringToSign, signingKey)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	digest := sha256.Sum256([]byte(stringToSign))
	if !ecdsa.VerifyASN1(&key.PublicKey, digest[:], signature) {
		t.Error("ECDSA signature does not verify")
	}
}

func TestUnsupportedKeyTypeIsRejectedUpfront(t *testing.T) {
	cert, key := testutils.GenerateEd25519Identity(t)

	_, err := sign.NewSigningKey(cert, key)
	if err == nil {
		t.Error("Should have gotten an error")
	}
	if !errors.Is(err, sign.ErrUnsupportedKey) {
		t.Errorf("Expected ErrUnsupportedKey, got %s", err)
	}

	//Even a hand-built key must be refused before any cryptographic call
	_, err = sign.Sign("whatever", sign.SigningKey{Certificate: cert, PrivateKey: key})
	if !errors.Is(err, sign.ErrUnsupportedKey) {
		t.Errorf("Expected ErrUnsupportedKey, got %s", err)
	}
}

func TestBuildAuthorization(t *testing.T) {
	cert, key := testutils.GenerateRSAIdentity(t)
	signingKey, err := sign.NewSigningKey(cert, key)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}

	authorization, err := sign.BuildAuthorization(testExchangeRequest(), signingKey, "us-east-1", "rolesanywhere")
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}

	expectedPrefix := fmt.Sprintf(
		"AWS4-X509-RSA-SHA256 Credential=%s/20241009/us-east-1/rolesanywhere/aws4_request, SignedHeaders=host, Signature=",
		cert.SerialNumber.String(),
	)
	if !strings.HasPrefix(authorization.Authorization, expectedPrefix) {
		t.Errorf("Got %s, expected prefix %s", authorization.Authorization, expectedPrefix)
	}
	if authorization.AmzDate != "20241009T082516Z" {
		t.Errorf("Got %s, expected 20241009T082516Z", authorization.AmzDate)
	}
	if authorization.AmzX509 == "" {
		t.Error("X-Amz-X509 value must carry the DER certificate")
	}
	if authorization.AmzX509Chain != "" {
		t.Error("No intermediates were provided so the chain header value must be empty")
	}
	if authorization.SignedHeaders != "host" {
		t.Errorf("Got %s, expected host", authorization.SignedHeaders)
	}

	//Repeated signing of the same request must give the exact same header
	again, err := sign.BuildAuthorization(testExchangeRequest(), signingKey, "us-east-1", "rolesanywhere")
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	if again.Authorization != authorization.Authorization {
		t.Error("Authorization header changed between identical invocations")
	}
}

func TestBuildAuthorizationRejectsInvalidTimestamp(t *testing.T) {
	cert, key := testutils.GenerateRSAIdentity(t)
	signingKey, err := sign.NewSigningKey(cert, key)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}

	testCases := []struct {
		Description string
		Timestamp   time.Time
	}{
		{"Zero timestamp", time.Time{}},
		{"Pre-epoch timestamp", time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		req := testExchangeRequest()
		req.Timestamp = tc.Timestamp
		_, err := sign.BuildAuthorization(req, signingKey, "us-east-1", "rolesanywhere")
		if !errors.Is(err, sign.ErrMalformedInput) {
			t.Errorf("%s: expected ErrMalformedInput, got %v", tc.Description, err)
		}
	}
}
