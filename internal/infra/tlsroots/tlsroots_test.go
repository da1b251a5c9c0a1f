package tlsroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTestCert writes a self-signed certificate and key for commonName.
func writeTestCert(t *testing.T, certFile, keyFile, commonName string) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	serial, _ := rand.Int(rand.Reader, big.NewInt(1000000))

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("WriteFile(cert) error = %v", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		t.Fatalf("WriteFile(key) error = %v", err)
	}
	return certPEM
}

func TestPool_AddCertFile(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "ca.crt")
	writeTestCert(t, certFile, filepath.Join(dir, "ca.key"), "statmesh-ca")

	pool := NewEmptyPool()
	if err := pool.AddCertFile(certFile); err != nil {
		t.Fatalf("AddCertFile() error = %v", err)
	}

	if got := pool.Added(); got != 1 {
		t.Errorf("Added() = %d, want 1", got)
	}

	cfg := pool.ClientConfig(false)
	if cfg.RootCAs == nil {
		t.Error("ClientConfig() has no roots")
	}
	if cfg.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should be off")
	}
	if NewPool().Added() != 0 {
		t.Error("NewPool() should start with no added certificates")
	}
}

func TestParseCertificatesPEM_SkipsKeys(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "ca.crt")
	keyFile := filepath.Join(dir, "ca.key")
	certPEM := writeTestCert(t, certFile, keyFile, "statmesh-ca")
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		t.Fatal(err)
	}

	certs, err := ParseCertificatesPEM(append(keyPEM, certPEM...))
	if err != nil {
		t.Fatalf("ParseCertificatesPEM() error = %v", err)
	}
	if len(certs) != 1 || certs[0].Subject.CommonName != "statmesh-ca" {
		t.Errorf("ParseCertificatesPEM() = %v", certs)
	}
}

func TestPool_AddCertPEM_Errors(t *testing.T) {
	pool := NewEmptyPool()
	if err := pool.AddCertPEM([]byte("not pem")); err != ErrNoCertsFound {
		t.Errorf("AddCertPEM(garbage) error = %v, want %v", err, ErrNoCertsFound)
	}

	bad := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("junk")})
	if err := pool.AddCertPEM(bad); err == nil {
		t.Error("AddCertPEM(invalid cert) expected error")
	}

	if err := pool.AddCertFile("/nonexistent/ca.crt"); err == nil {
		t.Error("AddCertFile(missing) expected error")
	}
}

func TestNewReloader(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writeTestCert(t, certFile, keyFile, "first")

	r, err := NewReloader(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewReloader() error = %v", err)
	}

	cert, err := r.ServerConfig().GetCertificate(nil)
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}

	if left := time.Until(r.NotAfter()); left < 23*time.Hour || left > 25*time.Hour {
		t.Errorf("NotAfter() is %v away, want about 24h", left)
	}

	if _, err := NewReloader(filepath.Join(dir, "missing.crt"), keyFile); err == nil {
		t.Error("NewReloader(missing) expected error")
	}
}

func TestReloader_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writeTestCert(t, certFile, keyFile, "first")

	r, err := NewReloader(certFile, keyFile, WithDebounce(0))
	if err != nil {
		t.Fatalf("NewReloader() error = %v", err)
	}
	reloaded := make(chan error, 10)
	r.OnReload = func(err error) { reloaded <- err }

	r.StartAsync()
	defer r.Stop()
	time.Sleep(100 * time.Millisecond)

	before, _ := r.GetCertificate(nil)
	writeTestCert(t, certFile, keyFile, "second")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-reloaded:
			after, _ := r.GetCertificate(nil)
			if after != before {
				leaf, err := x509.ParseCertificate(after.Certificate[0])
				if err == nil && leaf.Subject.CommonName == "second" {
					return
				}
			}
		case <-deadline:
			t.Fatal("certificate was not reloaded")
		}
	}
}

func TestReloader_FailedReloadKeepsCert(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writeTestCert(t, certFile, keyFile, "first")

	r, err := NewReloader(certFile, keyFile, WithDebounce(0))
	if err != nil {
		t.Fatalf("NewReloader() error = %v", err)
	}
	var got error
	r.OnReload = func(err error) { got = err }

	before, _ := r.GetCertificate(nil)
	if err := os.WriteFile(certFile, []byte("broken"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	r.Reload()

	if got == nil {
		t.Error("OnReload did not receive the error")
	}
	if after, _ := r.GetCertificate(nil); after != before {
		t.Error("failed reload replaced the certificate")
	}
	r.Stop()
	r.Stop()
}
