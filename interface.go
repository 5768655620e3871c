package artifactory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	buildRestURL   = "/api/build"
	buildBrowseURL = "/webapp/builds"

	buildInfoContentType = "application/vnd.org.jfrog.build.BuildInfo+json"
	checksumDeployType   = "application/vnd.org.jfrog.artifactory.storage.ItemCreated+json"
	artifactContentType  = "binary/octet-stream"
	checksumDeployHeader = "X-Checksum-Deploy"
	checksumSha1Header   = "X-Checksum-Sha1"
	checksumMd5Header    = "X-Checksum-Md5"
	contentTypeHeader    = "Content-Type"
)

// ChecksumDeployMinFileSize is the smallest file for which a checksum deploy
// is attempted.  Below this the extra round trip costs more than sending the
// bytes.
const ChecksumDeployMinFileSize int64 = 10 * 1024

// Client publishes build info and deploys artifacts to one Artifactory
// instance.  A Client is not safe for concurrent use; use one Client per
// build or serialize the calls.
type Client struct {
	agent   *agent
	baseURL string
	log     LogFunc

	// DisableChecksumDeploy makes DeployArtifact always send the file's bytes
	DisableChecksumDeploy bool
}

// New creates a Client for the Artifactory instance at baseURL.  An empty
// username sends requests without credentials.  A nil log sends messages to
// the package logger.
func New(baseURL, username, password string, log LogFunc) *Client {
	if log == nil {
		log = packageLog
	}
	return &Client{
		agent:   newAgent(username, password),
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// BaseURL returns the Artifactory URL this Client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) logf(level logrus.Level, format string, a ...interface{}) {
	c.log(level, fmt.Sprintf(format, a...))
}

// BrowseURL returns the page of a build in the Artifactory web UI
func (c *Client) BrowseURL(info *BuildInfo) string {
	return c.baseURL + buildBrowseURL + "/" + info.Name + "/" + info.Number + "/" + info.Started + "/"
}

// DeploymentURL returns the URL an artifact is deployed to, including its
// properties
func (c *Client) DeploymentURL(details DeployDetails) string {
	return c.baseURL + "/" + details.TargetRepository + "/" + details.ArtifactPath + details.Properties
}

// SendBuildInfo publishes a build-info document.  Artifactory answers a
// successful publish with 204 No Content; any other status is an error.
func (c *Client) SendBuildInfo(info *BuildInfo) error {
	if c == nil || c.agent == nil {
		return ErrClientClosed
	}
	if info == nil {
		return ErrNilBuildInfo
	}

	payload, err := json.Marshal(info)
	if err != nil {
		c.logf(logrus.ErrorLevel, "Could not publish the build-info object: %v", err)
		return newErrorf(err, "serializing build info %s/%s", info.Name, info.Number)
	}

	if err := c.SendBuildInfoJSON(payload); err != nil {
		c.logf(logrus.ErrorLevel, "Could not publish the build-info object: %s", causeMessage(err))
		return newErrorf(err, "publishing build info %s/%s", info.Name, info.Number)
	}

	c.logf(logrus.InfoLevel, "Build successfully deployed. Browse it in Artifactory under %s", c.BrowseURL(info))
	return nil
}

// SendBuildInfoJSON publishes an already serialized build-info document
func (c *Client) SendBuildInfoJSON(payload []byte) error {
	if c == nil || c.agent == nil {
		return ErrClientClosed
	}

	u := c.baseURL + buildRestURL

	c.logf(logrus.InfoLevel, "Uploading build info to Artifactory...")

	req := newRequestFromStringMap(u, http.MethodPut, map[string]string{
		contentTypeHeader: buildInfoContentType,
	})

	cs, err := c.agent.run(req, bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		c.logf(logrus.ErrorLevel, "%s", causeMessage(err))
		return newErrorf(err, "sending build info to %s", u)
	}

	if cs.StatusCode != http.StatusNoContent {
		c.logf(logrus.ErrorLevel, "Failed to send build info: %s", cs.Message())
		return newStatusErrorf(cs.StatusCode, "failed to send build info to %s: %s", u, cs.Message())
	}

	return nil
}

// DeployArtifact deploys a file to Artifactory.  Files of at least
// ChecksumDeployMinFileSize bytes are first offered by checksum only; when
// Artifactory does not already hold the content the bytes are sent.  Both
// paths succeed on 200 OK or 201 Created.  A file which shrinks while its
// bytes are sent is a LocalIOFailure wrapping ErrFileChanged.
func (c *Client) DeployArtifact(details DeployDetails) error {
	if c == nil || c.agent == nil {
		return ErrClientClosed
	}
	if details.Sha1 == "" || details.Md5 == "" {
		return newErrorf(ErrMissingChecksums, "deploying %s", details.File)
	}

	deployed, err := c.tryChecksumDeploy(details)
	if err != nil {
		return err
	}
	if deployed {
		return nil
	}

	b, err := newFileBody(details.File)
	if err != nil {
		return newKindErrorf(LocalIOFailure, err, "opening %s for deploy", details.File)
	}
	defer b.Close()

	u := c.DeploymentURL(details)
	headers := checksumHeaders(details)
	headers.Set(contentTypeHeader, artifactContentType)
	req := newRequest(u, http.MethodPut, headers)

	c.logf(logrus.InfoLevel, "Deploying artifact: %s", u)

	cs, err := c.agent.run(req, b, b.Size)
	if err != nil {
		c.logf(logrus.ErrorLevel, "Error occurred while publishing artifact to Artifactory: %s", details.File)
		if errors.Is(err, ErrFileChanged) {
			return newKindErrorf(LocalIOFailure, err, "%s changed while deploying to %s (%s)", details.File, u, b)
		}
		return newErrorf(err, "deploying %s to %s", details.File, u)
	}

	if cs.StatusCode != http.StatusOK && cs.StatusCode != http.StatusCreated {
		c.logf(logrus.ErrorLevel, "Error occurred while publishing artifact to Artifactory: %s", details.File)
		return newStatusErrorf(cs.StatusCode, "failed to deploy file %s to %s: %s", details.File, u, cs.Message())
	}

	return nil
}

// Try to deploy an artifact by checksum only.  Artifactory links the
// artifact to content it already stores when the checksums match.  Returning
// false means the bytes have to be sent; that is not an error.  A transport
// failure is returned as is and no full deploy is attempted.
func (c *Client) tryChecksumDeploy(details DeployDetails) (bool, error) {
	if c.DisableChecksumDeploy {
		return false, nil
	}

	fi, err := os.Stat(details.File)
	if err != nil {
		return false, newKindErrorf(LocalIOFailure, err, "determining size of %s", details.File)
	}

	if fi.Size() < ChecksumDeployMinFileSize {
		c.logf(logrus.InfoLevel, "Skipping checksum deploy of file size %d , falling back to regular deployment.", fi.Size())
		return false, nil
	}

	u := c.DeploymentURL(details)
	headers := checksumHeaders(details)
	headers.Set(checksumDeployHeader, "true")
	headers.Set(contentTypeHeader, checksumDeployType)
	req := newRequest(u, http.MethodPut, headers)

	cs, err := c.agent.run(req, nil, 0)
	if err != nil {
		c.logf(logrus.ErrorLevel, "Failed checksum deploy of checksum '%s': %s", details.Sha1, causeMessage(err))
		return false, newErrorf(err, "checksum deploy of %s", details.File)
	}

	if cs.StatusCode == http.StatusOK || cs.StatusCode == http.StatusCreated {
		c.logf(logrus.InfoLevel, "Successfully performed checksum deploy of file %s : %s", details.File, details.Sha1)
		return true, nil
	}

	c.logf(logrus.InfoLevel, "Failed checksum deploy of checksum '%s' with statusCode: %d", details.Sha1, cs.StatusCode)
	return false, nil
}

func checksumHeaders(details DeployDetails) http.Header {
	h := make(http.Header)
	h.Set(checksumSha1Header, details.Sha1)
	h.Set(checksumMd5Header, details.Md5)
	return h
}

// The innermost message of an error chain, for single line log messages
func causeMessage(err error) string {
	for {
		e, ok := err.(*Error)
		if !ok {
			return err.Error()
		}
		if e.super == nil {
			return e.msg
		}
		err = e.super
	}
}

// Close releases the connections held by the Client.  It is safe to call
// more than once and on a nil Client.
func (c *Client) Close() error {
	if c == nil || c.agent == nil {
		return nil
	}
	c.agent.close()
	c.agent = nil
	return nil
}
