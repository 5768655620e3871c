package artifactory

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

// Number of response body bytes kept for error reporting
const responseExcerptSize = 4 * 1024

// The request type contains the information needed to run an HTTP method.
// A request is built fresh for every call and never mutated once created.
type request struct {
	URL     string
	Method  string
	Headers http.Header
}

func newRequest(url, method string, headers http.Header) request {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h[k] = append([]string(nil), v...)
	}
	return request{
		URL:     url,
		Method:  method,
		Headers: h,
	}
}

func newRequestFromStringMap(url, method string, headers map[string]string) request {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}
	return request{URL: url, Method: method, Headers: h}
}

func (r request) String() string {
	return fmt.Sprintf("%s %s", strings.ToUpper(r.Method), r.URL)
}

// A callSummary is what is left of a response once the connection has been
// released
type callSummary struct {
	Method       string
	URL          string
	StatusCode   int
	Status       string
	ResponseBody []byte
}

func (cs callSummary) String() string {
	return fmt.Sprintf("%s %s -> %s", cs.Method, cs.URL, cs.Status)
}

// Message returns the most useful description of the response available,
// preferring the body Artifactory sends with its errors
func (cs callSummary) Message() string {
	if msg := strings.TrimSpace(string(cs.ResponseBody)); msg != "" {
		return fmt.Sprintf("%s: %s", cs.Status, msg)
	}
	return cs.Status
}

type agent struct {
	transport *http.Transport
	client    *http.Client
	username  string
	password  string
}

// Artifactory answers deploys directly.  A redirect on a PUT would drop the
// body, so redirects are reported as unexpected statuses instead of followed
func checkRedirect(req *http.Request, via []*http.Request) error {
	return http.ErrUseLastResponse
}

// Create and return a new agent with the Transport and Clients already set up
// for use
func newAgent(username, password string) *agent {
	transport := &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		MaxIdleConns:       10,
		IdleConnTimeout:    30 * time.Second,
		DisableCompression: true,
	}
	client := &http.Client{
		Transport:     transport,
		CheckRedirect: checkRedirect,
	}
	return &agent{
		transport: transport,
		client:    client,
		username:  username,
		password:  password,
	}
}

// Run a request.  The body may be nil for requests without one, in which case
// a Content-Length of zero is sent.  A non-nil error is always a
// TransportFailure; status codes are left for the caller to judge.
func (a *agent) run(req request, input io.Reader, size int64) (callSummary, error) {
	cs := callSummary{
		Method: req.Method,
		URL:    req.URL,
	}

	var reqBody io.Reader
	if input != nil {
		// The caller owns the body and closes it
		reqBody = ioutil.NopCloser(input)
	}

	httpRequest, err := http.NewRequest(req.Method, req.URL, reqBody)
	if err != nil {
		return cs, newKindErrorf(TransportFailure, err, "creating request %s", req)
	}

	// Credentials are added to the copy only
	httpRequest.Header = req.Headers.Clone()
	if input != nil {
		httpRequest.ContentLength = size
	} else {
		httpRequest.ContentLength = 0
	}
	if httpRequest.ContentLength == 0 {
		httpRequest.Body = http.NoBody
	}

	if a.username != "" {
		httpRequest.SetBasicAuth(a.username, a.password)
	}

	resp, err := a.client.Do(httpRequest)
	if err != nil {
		return cs, newKindErrorf(TransportFailure, err, "running request %s", req)
	}
	defer resp.Body.Close()

	cs.StatusCode = resp.StatusCode
	cs.Status = resp.Status

	var excerpt bytes.Buffer
	if _, err := io.CopyN(&excerpt, resp.Body, responseExcerptSize); err != nil && err != io.EOF {
		return cs, newKindErrorf(TransportFailure, err, "reading response body of %s", req)
	}
	cs.ResponseBody = excerpt.Bytes()

	// Drain whatever is left so that the connection can be reused
	if _, err := io.Copy(ioutil.Discard, resp.Body); err != nil {
		return cs, newKindErrorf(TransportFailure, err, "draining response body of %s", req)
	}

	return cs, nil
}

// Release idle connections held by the transport
func (a *agent) close() {
	a.transport.CloseIdleConnections()
}
