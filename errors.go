package artifactory

import "errors"

// ErrMissingChecksums is returned when a deploy is attempted without both the
// sha1 and md5 of the artifact
var ErrMissingChecksums = errors.New("sha1 and md5 checksums are required")

// ErrNilBuildInfo is returned when SendBuildInfo is given a nil document
var ErrNilBuildInfo = errors.New("build info must be non-nil")

// ErrFileChanged is returned when a file's size changes while it is being
// hashed or uploaded
var ErrFileChanged = errors.New("file changed while being read")

// ErrBadProperty is returned for a property which is not of the form key=value
var ErrBadProperty = errors.New("property must be of the form key=value")

// ErrClientClosed is returned by operations on a nil Client or after Close
var ErrClientClosed = errors.New("client is closed")
