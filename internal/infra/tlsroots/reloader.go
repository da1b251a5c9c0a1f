package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader serves a certificate key pair and reloads it when either file
// changes on disk. A failed reload keeps the previous certificate.
type Reloader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger
	debounce time.Duration

	// OnReload, when set, is called after every reload attempt.
	OnReload func(err error)

	mu         sync.RWMutex
	cert       *tls.Certificate
	notAfter   time.Time
	lastReload time.Time

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ReloaderOption {
	return func(r *Reloader) {
		r.logger = logger
	}
}

// WithDebounce sets the minimum time between two reloads.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// NewReloader loads the key pair once and returns a Reloader serving it.
func NewReloader(certFile, keyFile string, opts ...ReloaderOption) (*Reloader, error) {
	r := &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   slog.Default(),
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.load(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// ServerConfig returns a server TLS config that always presents the most
// recently loaded certificate.
func (r *Reloader) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// Start watches both files until Stop is called.
func (r *Reloader) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	r.watcher = w

	dirs := map[string]struct{}{
		filepath.Dir(r.certFile): {},
		filepath.Dir(r.keyFile):  {},
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return fmt.Errorf("tlsroots: watch dir %s: %w", dir, err)
		}
	}

	r.logger.Info("certificate reloader started", "cert_file", r.certFile)

	certBase := filepath.Base(r.certFile)
	keyBase := filepath.Base(r.keyFile)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			base := filepath.Base(event.Name)
			if base != certBase && base != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			r.Reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("certificate watcher error", "error", err)
		case <-r.done:
			return w.Close()
		}
	}
}

// StartAsync runs Start in a goroutine.
func (r *Reloader) StartAsync() {
	go func() {
		if err := r.Start(); err != nil {
			r.logger.Error("certificate reloader stopped", "error", err)
		}
	}()
}

// Stop stops watching. It is safe to call more than once.
func (r *Reloader) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// Reload loads the key pair again unless the last reload happened within
// the debounce window. Errors are logged and passed to OnReload.
func (r *Reloader) Reload() {
	r.mu.Lock()
	if time.Since(r.lastReload) < r.debounce {
		r.mu.Unlock()
		return
	}
	r.lastReload = time.Now()
	r.mu.Unlock()

	err := r.load()
	if err != nil {
		r.logger.Error("certificate reload failed", "cert_file", r.certFile, "error", err)
	} else {
		r.logger.Info("certificate reloaded", "cert_file", r.certFile)
	}
	if r.OnReload != nil {
		r.OnReload(err)
	}
}

// NotAfter returns the expiry of the certificate currently served.
func (r *Reloader) NotAfter() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notAfter
}

func (r *Reloader) load() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	leaf := cert.Leaf
	if leaf == nil {
		if leaf, err = x509.ParseCertificate(cert.Certificate[0]); err != nil {
			return fmt.Errorf("parse leaf certificate: %w", err)
		}
	}
	r.mu.Lock()
	r.cert = &cert
	r.notAfter = leaf.NotAfter
	r.mu.Unlock()
	return nil
}
