package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// sessionFilePath returns the per-user key-cache file. The cache lets
// repeated commands sign without re-prompting the OS keychain.
//
//	macOS:   ~/Library/Caches/stswap/session.json
//	Linux:   ~/.cache/stswap/session.json
//	Windows: %LocalAppData%\stswap\session.json
func sessionFilePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "stswap", "session.json")
}

// loadSessionKeys reads the session file and returns the key map.
// Returns an empty map (never nil) on any error.
func loadSessionKeys() map[string]string {
	data, err := os.ReadFile(sessionFilePath())
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return make(map[string]string)
	}
	return m
}

// saveSessionKeys writes the key map with 0600 permissions.
func saveSessionKeys(m map[string]string) error {
	path := sessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(path, 0o600)
	return nil
}

// GetSessionKey returns a cached key for ref, or ("", false) if not cached.
func GetSessionKey(ref string) (string, bool) {
	m := loadSessionKeys()
	v, ok := m[ref]
	return v, ok
}

// PutSessionKey caches a key for ref in the session file.
func PutSessionKey(ref, hexKey string) {
	m := loadSessionKeys()
	m[ref] = hexKey
	_ = saveSessionKeys(m) // best-effort
}

// RemoveSessionKey removes a single wallet's key from the session file.
// Called on wallet removal so a deleted wallet is evicted immediately.
func RemoveSessionKey(ref string) {
	m := loadSessionKeys()
	if _, ok := m[ref]; !ok {
		return
	}
	delete(m, ref)
	_ = saveSessionKeys(m)
}

// ClearSession removes all cached keys by deleting the session file.
func ClearSession() error {
	err := os.Remove(sessionFilePath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// SessionActive reports whether a non-empty session file exists.
func SessionActive() bool {
	return len(loadSessionKeys()) > 0
}

// CachedKeystore wraps a keystore with the session-file cache: reads hit the
// cache first, and keychain hits are written back so the next command skips
// the keychain prompt.
type CachedKeystore struct {
	inner KeyStorer
}

// NewCachedKeystore wraps ks with the session cache.
func NewCachedKeystore(ks KeyStorer) *CachedKeystore {
	return &CachedKeystore{inner: ks}
}

func (c *CachedKeystore) Store(name, hexKey string) (string, error) {
	return c.inner.Store(name, hexKey)
}

func (c *CachedKeystore) Retrieve(ref string) (string, error) {
	if v, ok := GetSessionKey(ref); ok {
		return v, nil
	}
	v, err := c.inner.Retrieve(ref)
	if err != nil {
		return "", err
	}
	if SessionActive() {
		PutSessionKey(ref, v)
	}
	return v, nil
}

func (c *CachedKeystore) Delete(ref string) error {
	RemoveSessionKey(ref)
	return c.inner.Delete(ref)
}
