// Package upload implements the image upload collaborator: it accepts
// raw image payloads and returns a durable URL. This implementation
// stores files on local disk; listings keep only the returned URL, so
// swapping in object storage later touches nothing else.
package upload

import (
    "crypto/rand"
    "encoding/hex"
    "errors"
    "io"
    "os"
    "path/filepath"
    "strings"
)

// Store writes uploads under Dir and serves them below BaseURL.
type Store struct {
    Dir     string
    BaseURL string
}

// NewStore creates the upload directory if needed.
func NewStore(dir, baseURL string) (*Store, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return nil, err
    }
    return &Store{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// ErrUnsupportedType rejects files whose extension is not an image type.
var ErrUnsupportedType = errors.New("unsupported file type")

// Save persists the payload under a random name, keeping the original
// extension, and returns the public URL.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
    ext := strings.ToLower(filepath.Ext(filename))
    if !allowedExt[ext] {
        return "", ErrUnsupportedType
    }
    buf := make([]byte, 16)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    name := hex.EncodeToString(buf) + ext
    f, err := os.Create(filepath.Join(s.Dir, name))
    if err != nil {
        return "", err
    }
    defer f.Close()
    if _, err := io.Copy(f, r); err != nil {
        return "", err
    }
    return s.BaseURL + "/" + name, nil
}
