package filestore

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"io"
)

const randIDLength = 12

var errUniqueIDNotGenerated = errors.New("unique id does not exists after tried 50 times")

// FileStore defines interface to store uploaded submission archives
type FileStore interface {
	Add(name string, r io.Reader) (string, error) // Add stores content of r under a new id, name is kept as the original file name
	Remove(string) bool                           // Remove deletes a file by id
	Get(string) (name, path string, ok bool)      // Get returns original name and local path by id
	List() map[string]string                      // List return all file ids with their names
}

var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func generateID() (string, error) {
	b := make([]byte, randIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return idEncoding.EncodeToString(b), nil
}
