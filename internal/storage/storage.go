package storage

import "io"

// Storage keeps the downloaded video artifacts for the current session. Each
// artifact is addressed by the filename returned from SaveVideo; the component
// that saved it owns the name and deletes it when the artifact is replaced.
type Storage interface {
	SaveVideo(r io.Reader) (string, error)
	OpenVideo(name string) (io.ReadSeekCloser, error)
	DeleteVideo(name string) error
}
