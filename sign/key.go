package sign

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	AlgorithmRSA   = "AWS4-X509-RSA-SHA256"
	AlgorithmECDSA = "AWS4-X509-ECDSA-SHA256"
)

// SigningKey binds a client certificate to its private key for the duration
// of one signing operation. The signer never persists it.
type SigningKey struct {
	Certificate *x509.Certificate
	PrivateKey  crypto.Signer

	//Intermediates between the client certificate and the trust anchor, in
	//leaf-first order. May be empty.
	Chain []*x509.Certificate
}

// NewSigningKey rejects key types the signing scheme cannot express so that
// callers fail before any cryptographic operation is attempted.
func NewSigningKey(cert *x509.Certificate, key crypto.Signer, chain ...*x509.Certificate) (SigningKey, error) {
	sk := SigningKey{Certificate: cert, PrivateKey: key, Chain: chain}
	if cert == nil || key == nil {
		return SigningKey{}, fmt.Errorf("%w: certificate and private key are both required", ErrMalformedInput)
	}
	if _, err := sk.Algorithm(); err != nil {
		return SigningKey{}, err
	}
	return sk, nil
}

// Algorithm returns the signing algorithm identifier for the key type of the
// certificate. Only RSA and ECDSA keys are supported.
func (k SigningKey) Algorithm() (string, error) {
	switch k.PrivateKey.(type) {
	case *rsa.PrivateKey:
		return AlgorithmRSA, nil
	case *ecdsa.PrivateKey:
		return AlgorithmECDSA, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedKey, k.PrivateKey)
	}
}

// SerialNumber is the decimal certificate serial, which takes the place of an
// access key id in the credential scope.
func (k SigningKey) SerialNumber() string {
	return k.Certificate.SerialNumber.String()
}

// CertificateDerB64 is the value for the X-Amz-X509 header.
func (k SigningKey) CertificateDerB64() string {
	return base64.StdEncoding.EncodeToString(k.Certificate.Raw)
}

// ChainDerB64 is the value for the X-Amz-X509-Chain header, empty when there
// are no intermediates.
func (k SigningKey) ChainDerB64() string {
	if len(k.Chain) == 0 {
		return ""
	}
	encoded := make([]string, len(k.Chain))
	for i, cert := range k.Chain {
		encoded[i] = base64.StdEncoding.EncodeToString(cert.Raw)
	}
	return strings.Join(encoded, ",")
}
