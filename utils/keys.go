package utils

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
)

var ErrNoPemData = errors.New("no PEM data found")

// Secrets managers and environment variables often hold PEM material as a
// single line. Recover the original structure for the common mangling
// patterns: literal \n sequences and space-joined header lines.
func NormalizePem(in string) string {
	if strings.Contains(in, `\n`) {
		return strings.ReplaceAll(in, `\n`, "\n")
	}
	if !strings.Contains(in, "\n") {
		in = strings.Replace(in, "----- ", "-----\n", 1)
		if i := strings.LastIndex(in, " -----END"); i != -1 {
			in = in[:i] + "\n" + in[i+1:]
		}
	}
	return in
}

// Parse all CERTIFICATE blocks. The first one is expected to be the leaf,
// any following ones its intermediates.
func CertificateChainFromPem(pemBytes []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := pemBytes
	for {
		var pemBlock *pem.Block
		pemBlock, rest = pem.Decode(rest)
		if pemBlock == nil {
			break
		}
		if pemBlock.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(pemBlock.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, ErrNoPemData
	}
	return certs, nil
}

// Load a private key regardless of whether it was marshalled as PKCS#8,
// PKCS#1 or SEC 1. All supported key types satisfy crypto.Signer.
func SignerFromPem(pemBytes []byte) (crypto.Signer, error) {
	pemBlock, _ := pem.Decode(pemBytes)
	if pemBlock == nil {
		return nil, ErrNoPemData
	}
	if key, err := x509.ParsePKCS8PrivateKey(pemBlock.Bytes); err == nil {
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, errors.New("PKCS#8 key does not implement crypto.Signer")
		}
		return signer, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(pemBlock.Bytes); err == nil {
		return key, nil
	}
	return x509.ParseECPrivateKey(pemBlock.Bytes)
}

func SignerFromPemFile(filePath string) (crypto.Signer, error) {
	pemBytes, err := ReadFileFull(filePath)
	if err != nil {
		return nil, err
	}
	return SignerFromPem(pemBytes)
}

func CertificateChainFromPemFile(filePath string) ([]*x509.Certificate, error) {
	pemBytes, err := ReadFileFull(filePath)
	if err != nil {
		return nil, err
	}
	return CertificateChainFromPem(pemBytes)
}
