package artifactory

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
)

// Number of bytes read from a file in a single read while hashing
const hashChunkSize = 128 * 1024

// DeployDetails describes a single artifact deploy.  It is built by the
// caller before each DeployArtifact call and not modified afterwards.
type DeployDetails struct {
	// TargetRepository is the repository key, e.g. libs-release-local
	TargetRepository string

	// ArtifactPath is the path of the artifact inside the repository
	ArtifactPath string

	// File is the local file to deploy
	File string

	// Sha1 and Md5 are lowercase hex digests of File
	Sha1 string
	Md5  string

	// Properties is appended verbatim to the deployment URL, e.g.
	// ";branch=main".  See Properties.String.
	Properties string
}

func (d DeployDetails) String() string {
	return fmt.Sprintf("%s -> %s/%s%s (sha1: %s, md5: %s)",
		d.File, d.TargetRepository, d.ArtifactPath, d.Properties, d.Sha1, d.Md5)
}

// Name returns the file name part of the artifact path
func (d DeployDetails) Name() string {
	return path.Base(d.ArtifactPath)
}

// NewDeployDetails hashes file and returns the details needed to deploy it to
// artifactPath in repo.
func NewDeployDetails(file, repo, artifactPath string, props Properties) (DeployDetails, error) {
	sums, err := ChecksumFile(file)
	if err != nil {
		return DeployDetails{}, err
	}
	return DeployDetails{
		TargetRepository: repo,
		ArtifactPath:     artifactPath,
		File:             file,
		Sha1:             sums.Sha1,
		Md5:              sums.Md5,
		Properties:       props.String(),
	}, nil
}

// FileChecksums are the digests Artifactory verifies on deploy
type FileChecksums struct {
	Sha1 string
	Md5  string
	Size int64
}

// ChecksumFile computes the sha1 and md5 of a file and counts its bytes in a
// single pass.  The file is streamed and an error is returned if its size
// changes while it is being read.
func ChecksumFile(filename string) (FileChecksums, error) {
	f, err := os.Open(filename)
	if err != nil {
		return FileChecksums{}, newKindErrorf(LocalIOFailure, err, "opening %s for hashing", filename)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return FileChecksums{}, newKindErrorf(LocalIOFailure, err, "determining size of %s", filename)
	}
	size := fi.Size()

	sha1Hash := sha1.New()
	md5Hash := md5.New()
	counter := &byteCountingWriter{}

	output := io.MultiWriter(sha1Hash, md5Hash, counter)

	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(output, f, buf); err != nil {
		return FileChecksums{}, newKindErrorf(LocalIOFailure, err, "reading %s for hashing", filename)
	}

	if counter.count != size {
		return FileChecksums{}, newKindErrorf(LocalIOFailure, ErrFileChanged, "size of %s changed during hashing from %d to %d", filename, size, counter.count)
	}
	if fi, err := f.Stat(); err != nil {
		return FileChecksums{}, newKindErrorf(LocalIOFailure, err, "determining size of %s", filename)
	} else if fi.Size() != size {
		return FileChecksums{}, newKindErrorf(LocalIOFailure, ErrFileChanged, "size of %s changed during hashing from %d to %d", filename, size, fi.Size())
	}

	return FileChecksums{
		Sha1: hex.EncodeToString(sha1Hash.Sum(nil)),
		Md5:  hex.EncodeToString(md5Hash.Sum(nil)),
		Size: counter.count,
	}, nil
}
