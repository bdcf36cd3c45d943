package gallery

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SameriteRL/Face-Recognizer/pkg/face"
	"github.com/SameriteRL/Face-Recognizer/pkg/logging"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// NonceSize is the size of the nonce used for encryption.
	NonceSize = 24
	// KeySize is the size of the encryption key.
	KeySize = 32
)

// ErrCacheMiss is returned when no cache file exists yet.
var ErrCacheMiss = errors.New("gallery cache not found")

// ErrEncryption is returned when encryption or decryption fails.
var ErrEncryption = errors.New("encryption error")

// Cache persists a built gallery between sessions so repeated runs skip the
// directory walk. The file is optionally encrypted at rest with a key
// derived from machine-specific information, tying it to this machine.
type Cache struct {
	path      string
	encrypted bool
	key       [KeySize]byte
}

// cacheFile is the on-disk representation of a cached gallery.
type cacheFile struct {
	BuiltAt  time.Time                   `json:"built_at"`
	Subjects map[string][]face.Embedding `json:"subjects"`
}

// NewCache creates a cache at the given file path.
func NewCache(path string, encrypted bool) (*Cache, error) {
	c := &Cache{path: path, encrypted: encrypted}

	if encrypted {
		key, err := deriveKey()
		if err != nil {
			return nil, fmt.Errorf("derive cache key: %w", err)
		}
		c.key = key
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return c, nil
}

// deriveKey derives an encryption key from machine-specific information.
func deriveKey() ([KeySize]byte, error) {
	var key [KeySize]byte
	var identity strings.Builder

	if machineID, err := os.ReadFile("/etc/machine-id"); err == nil {
		identity.Write(machineID)
	}
	if hostname, err := os.Hostname(); err == nil {
		identity.WriteString(hostname)
	}
	identity.WriteString(fmt.Sprintf("%d", os.Getuid()))
	identity.WriteString("facerec-gallery-v1-salt")

	hash := sha256.Sum256([]byte(identity.String()))
	copy(key[:], hash[:])
	return key, nil
}

// Save writes the gallery to the cache file.
func (c *Cache) Save(g Gallery) error {
	data, err := json.MarshalIndent(cacheFile{
		BuiltAt:  time.Now().UTC(),
		Subjects: g,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal gallery cache: %w", err)
	}

	if c.encrypted {
		data, err = c.encrypt(data)
		if err != nil {
			return fmt.Errorf("encrypt gallery cache: %w", err)
		}
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("write gallery cache: %w", err)
	}

	logging.Debugf("gallery cache saved: %s (%d subjects)", c.path, len(g))
	return nil
}

// Load reads the gallery back from the cache file. A missing file returns
// ErrCacheMiss; a cache holding zero embeddings fails with ErrEmptyGallery,
// matching the builder's guarantee.
func (c *Cache) Load() (Gallery, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read gallery cache: %w", err)
	}

	if c.encrypted {
		data, err = c.decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("decrypt gallery cache: %w", err)
		}
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal gallery cache: %w", err)
	}

	g := Gallery{}
	for subject, embs := range file.Subjects {
		if len(embs) == 0 {
			continue
		}
		g[subject] = embs
	}
	if g.Count() == 0 {
		return nil, fmt.Errorf("%s: %w", c.path, ErrEmptyGallery)
	}

	logging.Debugf("gallery cache loaded: %s (%d subjects, built %s)",
		c.path, len(g), file.BuiltAt.Format(time.RFC3339))
	return g, nil
}

// encrypt seals data with a random nonce prepended to the box.
func (c *Cache) encrypt(data []byte) ([]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return secretbox.Seal(nonce[:], data, &nonce, &c.key), nil
}

// decrypt opens a box produced by encrypt.
func (c *Cache) decrypt(data []byte) ([]byte, error) {
	if len(data) < NonceSize {
		return nil, fmt.Errorf("%w: cache file too short", ErrEncryption)
	}

	var nonce [NonceSize]byte
	copy(nonce[:], data[:NonceSize])

	plain, ok := secretbox.Open(nil, data[NonceSize:], &nonce, &c.key)
	if !ok {
		return nil, fmt.Errorf("%w: cache cannot be opened on this machine", ErrEncryption)
	}
	return plain, nil
}
