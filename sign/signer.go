package sign

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/guaranteeops/reconbot/constants"
	"github.com/guaranteeops/reconbot/utils"
)

// SignedAuthorization is everything a caller needs to attach to the outbound
// credential exchange request. It has no lifecycle of its own.
type SignedAuthorization struct {
	Authorization string
	AmzDate       string
	AmzX509       string
	//Empty when the signing key carries no intermediates
	AmzX509Chain  string
	SignedHeaders string
}

func CredentialScope(timestamp time.Time, region, service string) string {
	return strings.Join([]string{
		timestamp.UTC().Format(constants.DateFormat),
		region,
		service,
		constants.AWS4Terminator,
	}, "/")
}

func StringToSign(canonicalRequest string, timestamp time.Time, algorithm, credentialScope string) string {
	return strings.Join([]string{
		algorithm,
		timestamp.UTC().Format(constants.TimeFormat),
		credentialScope,
		utils.Sha256hex([]byte(canonicalRequest)),
	}, "\n")
}

// Sign produces the raw signature bytes over stringToSign with the key bound
// to the certificate. RSA keys sign PKCS#1 v1.5, ECDSA keys sign ASN.1 DER,
// both over a SHA-256 digest.
func Sign(stringToSign string, key SigningKey) ([]byte, error) {
	if _, err := key.Algorithm(); err != nil {
		return nil, err
	}
	digest := sha256.Sum256([]byte(stringToSign))
	switch privateKey := key.PrivateKey.(type) {
	case *rsa.PrivateKey:
		signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, digest[:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrSigningFailure, err)
		}
		return signature, nil
	case *ecdsa.PrivateKey:
		signature, err := ecdsa.SignASN1(rand.Reader, privateKey, digest[:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrSigningFailure, err)
		}
		return signature, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key.PrivateKey)
	}
}

func AuthorizationHeader(algorithm, serialNumber, credentialScope, signedHeaders string, signature []byte) string {
	return fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm,
		serialNumber,
		credentialScope,
		signedHeaders,
		hex.EncodeToString(signature),
	)
}

// BuildAuthorization runs the full pipeline: canonical request, string to
// sign, signature, Authorization header. It is a pure function, safe for
// concurrent use on independent inputs.
func BuildAuthorization(req SigningRequest, key SigningKey, region, service string) (*SignedAuthorization, error) {
	if req.Timestamp.IsZero() || req.Timestamp.Unix() < 0 {
		return nil, fmt.Errorf("%w: invalid signing timestamp %v", ErrMalformedInput, req.Timestamp)
	}
	algorithm, err := key.Algorithm()
	if err != nil {
		return nil, err
	}

	canonicalRequest, err := CanonicalRequest(req)
	if err != nil {
		return nil, err
	}
	timestamp := req.Timestamp.UTC().Truncate(time.Second)
	scope := CredentialScope(timestamp, region, service)
	stringToSign := StringToSign(canonicalRequest, timestamp, algorithm, scope)

	signature, err := Sign(stringToSign, key)
	if err != nil {
		return nil, err
	}

	signedHeaders, err := SignedHeaderNames(req.Headers)
	if err != nil {
		return nil, err
	}

	return &SignedAuthorization{
		Authorization: AuthorizationHeader(algorithm, key.SerialNumber(), scope, signedHeaders, signature),
		AmzDate:       timestamp.Format(constants.TimeFormat),
		AmzX509:       key.CertificateDerB64(),
		AmzX509Chain:  key.ChainDerB64(),
		SignedHeaders: signedHeaders,
	}, nil
}
