package rolesanywhere

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/guaranteeops/reconbot/sign"
	"github.com/guaranteeops/reconbot/utils"
)

// SigningIdentity serves the current certificate-bound signing key. When it
// was loaded from files it can keep itself up to date on rotation so that
// long running processes pick up renewed certificates without a restart.
type SigningIdentity struct {
	certFile string
	keyFile  string

	mu  sync.RWMutex
	key sign.SigningKey

	//To monitor file system changes, nil when the identity came from memory
	watcher *fsnotify.Watcher
}

// NewSigningIdentityFromPem loads an identity from in-memory PEM strings as
// they come out of environment variables or a secrets manager. Escaped
// newlines and single-line blobs get normalized first.
func NewSigningIdentityFromPem(certPem, keyPem string) (*SigningIdentity, error) {
	key, err := signingKeyFromPem([]byte(utils.NormalizePem(certPem)), []byte(utils.NormalizePem(keyPem)))
	if err != nil {
		return nil, err
	}
	return &SigningIdentity{key: key}, nil
}

// NewSigningIdentityFromFiles loads an identity from PEM files and optionally
// watches them so rotated material is reloaded in place.
func NewSigningIdentityFromFiles(certFile, keyFile string, watch bool) (*SigningIdentity, error) {
	identity := &SigningIdentity{certFile: certFile, keyFile: keyFile}
	if err := identity.reload(); err != nil {
		return nil, err
	}
	if watch {
		if err := identity.startWatching(); err != nil {
			return nil, err
		}
	}
	return identity, nil
}

func (i *SigningIdentity) Key() sign.SigningKey {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.key
}

func (i *SigningIdentity) Close() {
	if i.watcher != nil {
		utils.Close(i.watcher, "signing identity watcher")
	}
}

func signingKeyFromPem(certPem, keyPem []byte) (sign.SigningKey, error) {
	certs, err := utils.CertificateChainFromPem(certPem)
	if err != nil {
		return sign.SigningKey{}, fmt.Errorf("could not load certificate: %w", err)
	}
	signer, err := utils.SignerFromPem(keyPem)
	if err != nil {
		return sign.SigningKey{}, fmt.Errorf("could not load private key: %w", err)
	}
	return sign.NewSigningKey(certs[0], signer, certs[1:]...)
}

// PEM files on disk are expected to be well formed; normalization only
// applies to material coming out of environment variables.
func (i *SigningIdentity) reload() error {
	certs, err := utils.CertificateChainFromPemFile(i.certFile)
	if err != nil {
		return fmt.Errorf("could not load certificate: %w", err)
	}
	signer, err := utils.SignerFromPemFile(i.keyFile)
	if err != nil {
		return fmt.Errorf("could not load private key: %w", err)
	}
	key, err := sign.NewSigningKey(certs[0], signer, certs[1:]...)
	if err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.key = key
	return nil
}

func (i *SigningIdentity) startWatching() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	i.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				slog.Debug("Identity watcher event", "event", event)
				if event.Has(fsnotify.Write) {
					i.reloadAndLog(event.Name)
				}
				if event.Has(fsnotify.Remove) {
					// See https://ahmet.im/blog/kubernetes-inotify/
					restartWatching(watcher, event.Name)
					i.reloadAndLog(event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("error with identity watcher", "error", err)
			}
		}
	}()

	for _, fileName := range []string{i.certFile, i.keyFile} {
		if err := watcher.Add(fileName); err != nil {
			return fmt.Errorf("could not watch %s: %w", fileName, err)
		}
	}
	return nil
}

func (i *SigningIdentity) reloadAndLog(fileName string) {
	if err := i.reload(); err != nil {
		//Rotations write certificate and key one after another so a transient
		//mismatch is expected; keep serving the previous pair.
		slog.Warn("Could not reload signing identity", "filename", fileName, "error", err)
		return
	}
	slog.Info("Reloaded signing identity", "filename", fileName)
}

func restartWatching(watcher *fsnotify.Watcher, fileName string) {
	err := watcher.Remove(fileName)
	if err != nil {
		slog.Debug("Wanted to stop watching file but watcher was gone", "filename", fileName)
	}
	err = watcher.Add(fileName)
	if err != nil {
		slog.Error("Could not re-add watcher", "filename", fileName, "error", err)
	}
}
