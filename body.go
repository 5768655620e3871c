package artifactory

import (
	"fmt"
	"io"
	"os"
)

// A body streams a file as a request body.  It reads at most Size bytes and
// reports ErrFileChanged if the file ends before Size bytes were read.
type body struct {
	File   *os.File
	Reader io.Reader
	Size   int64
	read   int64
}

// Create a body covering the whole of the file at filename.  The size is fixed
// when the body is created.  A size of 0 is allowed so that empty artifacts
// can be deployed.
func newFileBody(filename string) (*body, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	return &body{
		File:   file,
		Reader: io.LimitReader(file, fi.Size()),
		Size:   fi.Size(),
	}, nil
}

// Satisfy the io.Reader interface by reading from the associated file
func (b *body) Read(p []byte) (int, error) {
	n, err := b.Reader.Read(p)
	b.read += int64(n)
	if err == io.EOF && b.read < b.Size {
		return n, ErrFileChanged
	}
	return n, err
}

// Close a body and return relevant values back to their nil value.  Closing
// an already closed body does nothing.
func (b *body) Close() error {
	if b.File == nil {
		return nil
	}
	if err := b.File.Close(); err != nil {
		return err
	}

	b.File = nil
	b.Reader = nil

	return nil
}

// Return a string representation of a body for display
func (b *body) String() string {
	name := "<closed>"
	if b.File != nil {
		name = b.File.Name()
	}
	return fmt.Sprintf("filename: %s read: %d size: %d", name, b.read, b.Size)
}
