package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	artifactory "github.com/buildpipe/artifactory-deploy-go"
	"github.com/sirupsen/logrus"
	"github.com/taskcluster/slugid-go/slugid"
	"github.com/urfave/cli"
)

const (
	ErrInternal         = 1
	ErrBadUsage         = 2
	ErrUnexpectedStatus = 3
	ErrTransport        = 4
	ErrLocalIO          = 5
)

const version = "0.1.0"

func main() {
	err := _main(os.Args)
	if err == nil {
		os.Exit(0)
	}

	if ecErr, ok := err.(cli.ExitCoder); ok {
		os.Exit(ecErr.ExitCode())
	}

	os.Exit(ErrInternal)
}

// Translate a client error into an exit error carrying the matching code
func exitError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, artifactory.ErrMissingChecksums) || errors.Is(err, artifactory.ErrBadProperty) {
		return cli.NewExitError(err, ErrBadUsage)
	}
	kind, _ := artifactory.KindOf(err)
	switch kind {
	case artifactory.UnexpectedStatus:
		return cli.NewExitError(err, ErrUnexpectedStatus)
	case artifactory.TransportFailure:
		return cli.NewExitError(err, ErrTransport)
	case artifactory.LocalIOFailure:
		return cli.NewExitError(err, ErrLocalIO)
	default:
		return cli.NewExitError(err, ErrInternal)
	}
}

// Build a logger from the global flags.  Client messages go to stderr so that
// stdout stays free for scripting.
func newLogger(c *cli.Context) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if c.GlobalBool("quiet") {
		l.SetOutput(ioutil.Discard)
	}
	if c.GlobalBool("debug") {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Build a client from the global flags
func newClient(c *cli.Context) (*artifactory.Client, error) {
	url := c.GlobalString("url")
	if url == "" {
		return nil, cli.NewExitError("must specify the Artifactory url", ErrBadUsage)
	}

	return artifactory.New(url, c.GlobalString("username"), c.GlobalString("password"), artifactory.LogrusSink(newLogger(c))), nil
}

func deploy(c *cli.Context) error {
	input := c.String("input")
	if input == "" {
		return cli.NewExitError("must specify input", ErrBadUsage)
	}
	repo := c.String("repo")
	if repo == "" {
		return cli.NewExitError("must specify repo", ErrBadUsage)
	}
	path := c.String("path")
	if path == "" {
		path = filepath.Base(input)
	}

	props := artifactory.Properties{}
	for _, p := range c.StringSlice("property") {
		k, v, err := artifactory.ParseProperty(p)
		if err != nil {
			return exitError(err)
		}
		props.Add(k, v)
	}

	var details artifactory.DeployDetails
	sha1, md5 := c.String("sha1"), c.String("md5")
	switch {
	case sha1 == "" && md5 == "":
		var err error
		details, err = artifactory.NewDeployDetails(input, repo, path, props)
		if err != nil {
			return exitError(err)
		}
	case sha1 != "" && md5 != "":
		details = artifactory.DeployDetails{
			TargetRepository: repo,
			ArtifactPath:     path,
			File:             input,
			Sha1:             sha1,
			Md5:              md5,
			Properties:       props.String(),
		}
	default:
		return cli.NewExitError("--sha1 and --md5 must be given together", ErrBadUsage)
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	client.DisableChecksumDeploy = c.Bool("no-checksum-deploy")

	if err := client.DeployArtifact(details); err != nil {
		return exitError(err)
	}

	if biFile := c.String("build-info"); biFile != "" {
		info, err := artifactory.LoadBuildInfo(biFile)
		if err != nil {
			return exitError(err)
		}
		info.AddArtifact(c.String("module"), details)
		if err := artifactory.SaveBuildInfo(biFile, info); err != nil {
			return exitError(err)
		}
	}

	return nil
}

func publishBuild(c *cli.Context) error {
	var info *artifactory.BuildInfo

	if file := c.String("file"); file != "" {
		var err error
		info, err = artifactory.LoadBuildInfo(file)
		if err != nil {
			return exitError(err)
		}
	} else {
		name := c.String("name")
		if name == "" {
			return cli.NewExitError("must specify --file or --name", ErrBadUsage)
		}
		number := c.String("number")
		if number == "" {
			number = slugid.Nice()
		}
		info = &artifactory.BuildInfo{
			Version: "1.0.1",
			Name:    name,
			Number:  number,
			Started: artifactory.FormatStarted(time.Now()),
			Agent: &artifactory.Agent{
				Name:    "artifactory-deploy",
				Version: version,
			},
			URL:         c.String("build-url"),
			VcsRevision: c.String("vcs-revision"),
		}
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	return exitError(client.SendBuildInfo(info))
}

func _main(args []string) error {
	// We're going to take care of exiting ourselves
	cli.OsExiter = func(c int) {}

	app := cli.NewApp()

	app.Name = "artifactory"
	app.Version = version
	app.Usage = "deploy build artifacts and build info to Artifactory"

	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		if c.NArg() == 0 {
			return cli.NewExitError("Must specify command", ErrBadUsage)
		}
		return cli.NewExitError(fmt.Sprintf("%s is not a command", c.Args().Get(0)), ErrBadUsage)
	}

	app.OnUsageError = func(context *cli.Context, err error, isSubcommand bool) error {
		return cli.NewExitError(err, ErrBadUsage)
	}

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "url",
			EnvVar: "ARTIFACTORY_URL",
			Usage:  "Artifactory base `URL`, e.g. https://example.com/artifactory",
		},
		cli.StringFlag{
			Name:   "username",
			EnvVar: "ARTIFACTORY_USERNAME",
			Usage:  "deploy as `USERNAME`",
		},
		cli.StringFlag{
			Name:   "password",
			EnvVar: "ARTIFACTORY_PASSWORD",
			Usage:  "`PASSWORD` or API key of the deploying user",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "supress logging output",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:    "deploy",
			Aliases: []string{"d"},
			Usage:   "deploy an artifact",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "input, i",
					Usage:  "`FILENAME` to deploy",
					EnvVar: "ARTIFACTORY_INPUT",
				},
				cli.StringFlag{
					Name:   "repo, r",
					Usage:  "target `REPOSITORY` key",
					EnvVar: "ARTIFACTORY_REPO",
				},
				cli.StringFlag{
					Name:  "path",
					Usage: "artifact `PATH` inside the repository.  Defaults to the input's file name",
				},
				cli.StringSliceFlag{
					Name:  "property, p",
					Usage: "attach property `KEY=VALUE` to the artifact.  May be repeated",
				},
				cli.StringFlag{
					Name:  "sha1",
					Usage: "use `SHA1` instead of hashing the input",
				},
				cli.StringFlag{
					Name:  "md5",
					Usage: "use `MD5` instead of hashing the input",
				},
				cli.BoolFlag{
					Name:  "no-checksum-deploy",
					Usage: "always send the artifact's bytes",
				},
				cli.StringFlag{
					Name:  "build-info",
					Usage: "record the deployed artifact in the build info document `FILENAME`",
				},
				cli.StringFlag{
					Name:  "module",
					Usage: "build info module `ID` to record the artifact under",
					Value: "default",
				},
			},
			Action:   deploy,
			Category: "Deploying",
		},
		{
			Name:    "publish-build",
			Aliases: []string{"p"},
			Usage:   "publish build info",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "file, f",
					Usage:  "build info document `FILENAME` to publish",
					EnvVar: "ARTIFACTORY_BUILD_INFO",
				},
				cli.StringFlag{
					Name:   "name",
					Usage:  "publish a minimal build info for build `NAME`",
					EnvVar: "ARTIFACTORY_BUILD_NAME",
				},
				cli.StringFlag{
					Name:   "number",
					Usage:  "build `NUMBER`.  A unique id is generated when not given",
					EnvVar: "ARTIFACTORY_BUILD_NUMBER",
				},
				cli.StringFlag{
					Name:  "build-url",
					Usage: "`URL` of the build in the CI server",
				},
				cli.StringFlag{
					Name:  "vcs-revision",
					Usage: "`REVISION` the build was made from",
				},
			},
			Action:   publishBuild,
			Category: "Deploying",
		},
	}

	err := app.Run(args)
	if err == nil {
		return nil
	}
	if _, ok := err.(cli.ExitCoder); !ok {
		return cli.NewExitError(err, ErrBadUsage)
	}
	return err
}
