package integration

import (
	"crypto/rand"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	artifactory "github.com/buildpipe/artifactory-deploy-go"
	"github.com/taskcluster/slugid-go/slugid"
)

var buildName string = "artifactory-deploy-go-" + slugid.Nice()

// Runs against a real Artifactory.  Set ARTIFACTORY_URL, ARTIFACTORY_USERNAME,
// ARTIFACTORY_PASSWORD and ARTIFACTORY_REPO to enable.
func TestIntegration(t *testing.T) {
	url, present := os.LookupEnv("ARTIFACTORY_URL")
	if !present {
		t.Skip("ARTIFACTORY_URL not set")
	}
	repo := os.Getenv("ARTIFACTORY_REPO")
	if repo == "" {
		t.Fatal("ARTIFACTORY_REPO must be set")
	}

	client := artifactory.New(url, os.Getenv("ARTIFACTORY_USERNAME"), os.Getenv("ARTIFACTORY_PASSWORD"), nil)
	defer client.Close()

	data := make([]byte, 64*1024)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(t.TempDir(), "artifact.bin")
	if err := ioutil.WriteFile(input, data, 0644); err != nil {
		t.Fatal(err)
	}

	props := artifactory.Properties{}
	props.Add("build.name", buildName)
	props.Add("build.number", "1")

	info := &artifactory.BuildInfo{
		Version: "1.0.1",
		Name:    buildName,
		Number:  "1",
		Started: artifactory.FormatStarted(time.Now()),
	}

	t.Logf("Build name: %s", buildName)

	t.Run("should be able to deploy an artifact", func(t *testing.T) {
		d, err := artifactory.NewDeployDetails(input, repo, buildName+"/artifact.bin", props)
		if err != nil {
			t.Fatal(err)
		}
		if err := client.DeployArtifact(d); err != nil {
			t.Fatal(err)
		}
		info.AddArtifact(buildName, d)
	})

	t.Run("should be able to deploy the same content by checksum", func(t *testing.T) {
		d, err := artifactory.NewDeployDetails(input, repo, buildName+"/copy.bin", props)
		if err != nil {
			t.Fatal(err)
		}
		if err := client.DeployArtifact(d); err != nil {
			t.Fatal(err)
		}
		info.AddArtifact(buildName, d)
	})

	t.Run("should be able to publish build info", func(t *testing.T) {
		if err := client.SendBuildInfo(info); err != nil {
			t.Fatal(err)
		}
	})
}
