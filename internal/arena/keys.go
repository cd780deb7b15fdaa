package arena

import "sync"

// Keyring holds the user-supplied provider credentials. Keys live in process
// memory only and are set through the settings surface at runtime.
type Keyring struct {
	mu        sync.RWMutex
	googleKey string
	soraKey   string
}

func NewKeyring() *Keyring {
	return &Keyring{}
}

func (k *Keyring) SetGoogleKey(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.googleKey = key
}

func (k *Keyring) SetSoraKey(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.soraKey = key
}

func (k *Keyring) GoogleKey() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.googleKey
}

func (k *Keyring) SoraKey() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.soraKey
}
