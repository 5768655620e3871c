// Package fakeartifactory is an in-memory stand-in for the parts of the
// Artifactory REST API used by the deploy client.  It is used by tests.
package fakeartifactory

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Request is what the server recorded about one request it received
type Request struct {
	Method  string
	Path    string
	Header  http.Header
	BodyLen int64
}

// IsChecksumDeploy reports whether the request asked for a checksum deploy
func (r Request) IsChecksumDeploy() bool {
	return r.Header.Get("X-Checksum-Deploy") == "true"
}

// Item is a deployed artifact
type Item struct {
	Repo       string
	Path       string
	Properties string
	Sha1       string
	Md5        string
	Size       int64
}

// Server is a fake Artifactory.  Close it when done.
type Server struct {
	*httptest.Server

	router *mux.Router

	mu       sync.Mutex
	requests []Request
	builds   []json.RawMessage
	items    map[string]Item
	// sha1 -> md5 of every blob stored
	blobs    map[string]string

	// Status overrides.  Zero means normal behaviour.
	buildStatus    int
	checksumStatus int
	deployStatus   int

	username string
	password string
}

// New starts a fake Artifactory
func New() *Server {
	s := &Server{
		router: mux.NewRouter(),
		items:  make(map[string]Item),
		blobs:  make(map[string]string),
	}

	s.router.HandleFunc("/api/build", s.buildHandler).Methods("PUT")
	s.router.HandleFunc("/{repo}/{path:.+}", s.deployHandler).Methods("PUT")
	s.router.Use(s.record, s.auth)

	s.Server = httptest.NewServer(s.router)
	return s
}

// RequireAuth makes every request fail with 401 unless it carries these
// basic credentials
func (s *Server) RequireAuth(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.password = password
}

// SetBuildStatus overrides the status of PUT /api/build
func (s *Server) SetBuildStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildStatus = code
}

// SetChecksumStatus overrides the status of checksum deploys
func (s *Server) SetChecksumStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checksumStatus = code
}

// SetDeployStatus overrides the status of regular deploys
func (s *Server) SetDeployStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployStatus = code
}

// AddBlob makes content with these checksums known to the server, so that a
// checksum deploy of it succeeds
func (s *Server) AddBlob(sha1, md5 string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[sha1] = md5
}

// Requests returns a copy of every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Builds returns the build-info documents received so far
func (s *Server) Builds() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.builds...)
}

// Item returns the artifact deployed at repo/path
func (s *Server) Item(repo, path string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[repo+"/"+path]
	return it, ok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Header:  r.Header.Clone(),
			BodyLen: r.ContentLength,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		wantUser, wantPass := s.username, s.password
		s.mu.Unlock()
		if wantUser != "" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != wantUser || pass != wantPass {
				writeError(w, http.StatusUnauthorized, "Bad credentials")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) buildHandler(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "application/vnd.org.jfrog.build.BuildInfo+json" {
		writeError(w, http.StatusUnsupportedMediaType, "unexpected content type "+ct)
		return
	}

	data, err := ioutil.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !json.Valid(data) {
		writeError(w, http.StatusBadRequest, "invalid build info")
		return
	}

	s.mu.Lock()
	code := s.buildStatus
	if code == 0 || code == http.StatusNoContent {
		s.builds = append(s.builds, json.RawMessage(data))
	}
	s.mu.Unlock()

	if code == 0 {
		code = http.StatusNoContent
	}
	w.WriteHeader(code)
}

func (s *Server) deployHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	repo := vars["repo"]
	path, props := splitProperties(vars["path"])

	wantSha1 := r.Header.Get("X-Checksum-Sha1")
	wantMd5 := r.Header.Get("X-Checksum-Md5")

	if r.Header.Get("X-Checksum-Deploy") == "true" {
		s.checksumDeploy(w, repo, path, props, wantSha1, wantMd5)
		return
	}

	sha1Hash := sha1.New()
	md5Hash := md5.New()
	n, err := io.Copy(io.MultiWriter(sha1Hash, md5Hash), r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	gotSha1 := hex.EncodeToString(sha1Hash.Sum(nil))
	gotMd5 := hex.EncodeToString(md5Hash.Sum(nil))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deployStatus != 0 {
		writeError(w, s.deployStatus, "deploy rejected")
		return
	}
	if wantSha1 != "" && wantSha1 != gotSha1 {
		writeError(w, http.StatusConflict, "Checksum policy rejected the artifact: sha1 mismatch")
		return
	}
	if wantMd5 != "" && wantMd5 != gotMd5 {
		writeError(w, http.StatusConflict, "Checksum policy rejected the artifact: md5 mismatch")
		return
	}

	s.blobs[gotSha1] = gotMd5
	s.items[repo+"/"+path] = Item{repo, path, props, gotSha1, gotMd5, n}
	writeCreated(w, repo, path, gotSha1, gotMd5, n)
}

func (s *Server) checksumDeploy(w http.ResponseWriter, repo, path, props, wantSha1, wantMd5 string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checksumStatus != 0 {
		writeError(w, s.checksumStatus, "checksum deploy rejected")
		return
	}

	storedMd5, ok := s.blobs[wantSha1]
	if !ok || (wantMd5 != "" && wantMd5 != storedMd5) {
		writeError(w, http.StatusNotFound, "Checksum deploy failed. No existing file with SHA1 of '"+wantSha1+"'")
		return
	}

	s.items[repo+"/"+path] = Item{repo, path, props, wantSha1, storedMd5, 0}
	writeCreated(w, repo, path, wantSha1, storedMd5, 0)
}

// Matrix parameters start at the first ';' of the path
func splitProperties(p string) (string, string) {
	if i := strings.Index(p, ";"); i >= 0 {
		return p[:i], p[i:]
	}
	return p, ""
}

func writeCreated(w http.ResponseWriter, repo, path, sha1, md5 string, size int64) {
	w.Header().Set("Content-Type", "application/vnd.org.jfrog.artifactory.storage.ItemCreated+json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"repo": repo,
		"path": "/" + path,
		"size": size,
		"checksums": map[string]string{
			"sha1": sha1,
			"md5":  md5,
		},
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]interface{}{
			{"status": code, "message": msg},
		},
	})
}
