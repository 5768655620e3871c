package artifactory

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var allTheBytes []byte = []byte{1, 3, 7, 15, 31, 63, 127, 255}

func prepareFile(t *testing.T) string {
	filename := filepath.Join(t.TempDir(), "body-reading")

	file, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 256; i++ {
		if _, err = file.Write(allTheBytes); err != nil {
			t.Fatal(err)
		}
	}
	if err = file.Close(); err != nil {
		t.Fatal(err)
	}

	return filename
}

func TestBodyReading(t *testing.T) {
	filename := prepareFile(t)

	t.Run("should return error if file doesn't exist", func(t *testing.T) {
		_, err := newFileBody(filepath.Join(t.TempDir(), "file"))
		if !os.IsNotExist(err) {
			t.Error(err)
		}
	})

	t.Run("should read a complete 2048 byte file", func(t *testing.T) {
		body, err := newFileBody(filename)
		if err != nil {
			t.Fatal(err)
		}
		defer body.Close()

		if body.Size != 2048 {
			t.Errorf("expected size 2048, got %d", body.Size)
		}

		bodyData, err := ioutil.ReadAll(body)
		if err != nil {
			t.Error(err)
		}

		if !bytes.Equal(bodyData, bytes.Repeat(allTheBytes, 256)) {
			t.Error("body content does not match file content")
		}
	})

	t.Run("should report a file which shrinks while being read", func(t *testing.T) {
		shrinking := writeFile(t, "shrinking", bytes.Repeat(allTheBytes, 256))
		body, err := newFileBody(shrinking)
		if err != nil {
			t.Fatal(err)
		}
		defer body.Close()

		if err := os.Truncate(shrinking, 100); err != nil {
			t.Fatal(err)
		}

		bodyData, err := ioutil.ReadAll(body)
		if !errors.Is(err, ErrFileChanged) {
			t.Errorf("expected ErrFileChanged, got %v", err)
		}
		if len(bodyData) != 100 {
			t.Errorf("expected 100 bytes before the error, got %d", len(bodyData))
		}
		if s := body.String(); !strings.Contains(s, "read: 100 size: 2048") {
			t.Errorf("unexpected description %q", s)
		}
	})

	t.Run("should only read the size fixed at creation", func(t *testing.T) {
		growing := writeFile(t, "growing", []byte{0, 1, 2, 3})
		body, err := newFileBody(growing)
		if err != nil {
			t.Fatal(err)
		}
		defer body.Close()

		if err := ioutil.WriteFile(growing, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8}, 0644); err != nil {
			t.Fatal(err)
		}

		bodyData, err := ioutil.ReadAll(body)
		if err != nil {
			t.Error(err)
		}
		if !bytes.Equal(bodyData, []byte{0, 1, 2, 3}) {
			t.Errorf("expected [0 1 2 3], got %v", bodyData)
		}
	})

	t.Run("should allow empty files", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty")
		if err := ioutil.WriteFile(empty, nil, 0644); err != nil {
			t.Fatal(err)
		}
		body, err := newFileBody(empty)
		if err != nil {
			t.Fatal(err)
		}
		defer body.Close()

		bodyData, err := ioutil.ReadAll(body)
		if err != nil || len(bodyData) != 0 {
			t.Errorf("expected no data, got %d bytes and %v", len(bodyData), err)
		}
	})

	t.Run("should allow closing twice", func(t *testing.T) {
		body, err := newFileBody(filename)
		if err != nil {
			t.Fatal(err)
		}
		if err := body.Close(); err != nil {
			t.Error(err)
		}
		if err := body.Close(); err != nil {
			t.Error(err)
		}
		if s := body.String(); !strings.HasPrefix(s, "filename: <closed>") {
			t.Errorf("unexpected description %q", s)
		}
	})
}
