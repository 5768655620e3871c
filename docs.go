// Package artifactory publishes build information and deploys build
// artifacts to a JFrog Artifactory instance over its REST API.  It is meant
// to run as one step of a build pipeline.
//
// Build info
//
// A BuildInfo document describes one build: its name, number, start time and
// the artifacts of each module.  SendBuildInfo serializes it and PUTs it to
// /api/build.  Artifactory answers with 204 No Content; anything else is
// reported as an error.  On success the location of the build in the web UI
// is logged.
//
// Artifacts
//
// DeployArtifact PUTs a local file to /{repository}/{path}{properties} along
// with its sha1 and md5, which Artifactory verifies.  For files of at least
// ChecksumDeployMinFileSize bytes a checksum deploy is tried first: the
// request carries only the checksums and Artifactory links the artifact to
// content it already stores.  When it does not hold that content, the file is
// sent in full.  NewDeployDetails computes the checksums of a file.
//
// Errors
//
// Failures are returned as *Error values.  Use KindOf to tell transport
// failures, unexpected statuses and local I/O failures apart.  A checksum
// deploy which Artifactory declines is not an error.
//
// Logging
//
// Progress and outcomes are reported through the LogFunc given to New.  When
// none is given, messages go to this package's logrus logger, which can be
// redirected with SetLogOutput or replaced with SetLogger.
package artifactory
