package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned when a PEM input holds no certificate.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// Pool is the set of roots statmesh-cli trusts when talking to an HTTPS
// admin endpoint.
type Pool struct {
	certs *x509.CertPool
	added int
}

// NewPool creates a pool seeded with the system roots, or an empty pool
// where the system roots are unavailable.
func NewPool() *Pool {
	certs, err := x509.SystemCertPool()
	if err != nil {
		certs = x509.NewCertPool()
	}
	return &Pool{certs: certs}
}

// NewEmptyPool creates a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certs: x509.NewCertPool()}
}

// AddCertFile adds every certificate in a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("%w (%s)", err, path)
	}
	return nil
}

// AddCertPEM adds every CERTIFICATE block of pemData. Nothing is added
// when any block fails to parse.
func (p *Pool) AddCertPEM(pemData []byte) error {
	certs, err := ParseCertificatesPEM(pemData)
	if err != nil {
		return err
	}
	for _, c := range certs {
		p.certs.AddCert(c)
	}
	p.added += len(certs)
	return nil
}

// Added returns how many certificates were added on top of the system
// roots.
func (p *Pool) Added() int {
	return p.added
}

// ClientConfig returns a client TLS config trusting this pool.
func (p *Pool) ClientConfig(insecureSkipVerify bool) *tls.Config {
	return &tls.Config{
		RootCAs:            p.certs,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // opt-in via --insecure
	}
}

// ParseCertificatesPEM returns the certificates of every CERTIFICATE
// block in pemData, skipping other block types.
func ParseCertificatesPEM(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		certs = append(certs, c)
	}
	if len(certs) == 0 {
		return nil, ErrNoCertsFound
	}
	return certs, nil
}
