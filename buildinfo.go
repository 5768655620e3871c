package artifactory

import (
	"encoding/json"
	"io/ioutil"
	"path"
	"strings"
	"time"
)

// StartedTimeFormat is the layout Artifactory uses for BuildInfo.Started
const StartedTimeFormat = "2006-01-02T15:04:05.000-0700"

// FormatStarted formats t for use as BuildInfo.Started
func FormatStarted(t time.Time) string {
	return t.Format(StartedTimeFormat)
}

// BuildInfo is the build-info document published to Artifactory.  The client
// only serializes and transmits it.
type BuildInfo struct {
	Version              string            `json:"version,omitempty"`
	Name                 string            `json:"name"`
	Number               string            `json:"number"`
	Type                 string            `json:"type,omitempty"`
	BuildAgent           *Agent            `json:"buildAgent,omitempty"`
	Agent                *Agent            `json:"agent,omitempty"`
	Started              string            `json:"started"`
	DurationMillis       int64             `json:"durationMillis,omitempty"`
	Principal            string            `json:"principal,omitempty"`
	ArtifactoryPrincipal string            `json:"artifactoryPrincipal,omitempty"`
	URL                  string            `json:"url,omitempty"`
	VcsRevision          string            `json:"vcsRevision,omitempty"`
	VcsURL               string            `json:"vcsUrl,omitempty"`
	Properties           map[string]string `json:"properties,omitempty"`
	Modules              []Module          `json:"modules,omitempty"`
}

// Agent identifies the tool that produced or published a build
type Agent struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// Module groups the artifacts and dependencies of one build output
type Module struct {
	ID           string       `json:"id"`
	Artifacts    []Artifact   `json:"artifacts,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// Artifact is a file produced by a module
type Artifact struct {
	Type string `json:"type,omitempty"`
	Sha1 string `json:"sha1,omitempty"`
	Md5  string `json:"md5,omitempty"`
	Name string `json:"name,omitempty"`
}

// Dependency is a file consumed by a module
type Dependency struct {
	Type   string   `json:"type,omitempty"`
	Sha1   string   `json:"sha1,omitempty"`
	Md5    string   `json:"md5,omitempty"`
	ID     string   `json:"id,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}

// LoadBuildInfo reads a build-info JSON document from filename
func LoadBuildInfo(filename string) (*BuildInfo, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, newKindErrorf(LocalIOFailure, err, "reading build info %s", filename)
	}
	var info BuildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, newErrorf(err, "parsing build info %s", filename)
	}
	return &info, nil
}

// SaveBuildInfo writes info to filename as indented JSON
func SaveBuildInfo(filename string, info *BuildInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return newErrorf(err, "serializing build info %s/%s", info.Name, info.Number)
	}
	if err := ioutil.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		return newKindErrorf(LocalIOFailure, err, "writing build info %s", filename)
	}
	return nil
}

// AddArtifact records a deployed artifact in the module named moduleID,
// creating the module when it does not exist yet.
func (b *BuildInfo) AddArtifact(moduleID string, d DeployDetails) {
	a := Artifact{
		Type: strings.TrimPrefix(path.Ext(d.ArtifactPath), "."),
		Sha1: d.Sha1,
		Md5:  d.Md5,
		Name: d.Name(),
	}
	for i := range b.Modules {
		if b.Modules[i].ID == moduleID {
			b.Modules[i].Artifacts = append(b.Modules[i].Artifacts, a)
			return
		}
	}
	b.Modules = append(b.Modules, Module{ID: moduleID, Artifacts: []Artifact{a}})
}
