package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/tagship/tagship/internal"
	"github.com/tagship/tagship/internal/event"
	"github.com/tagship/tagship/internal/pipeline"
	"github.com/tagship/tagship/internal/release"
	"github.com/tagship/tagship/internal/service"
	"github.com/tagship/tagship/internal/settings"
	"github.com/tagship/tagship/internal/toolchain"
	"github.com/tagship/tagship/internal/util"
	"github.com/tagship/tagship/internal/workspace"
	"golang.org/x/term"
)

// tagship runs a single trigger-to-publish invocation for one pushed ref
// and exits 0 iff the run succeeded. The ref comes from the first argument
// or TAGSHIP_REF.
func main() {
	settings.ReadDotenv(internal.DotEnvPath)
	settings.Settings = settings.NewSettings()
	internal.InitializeConfiguration()

	rawRef := os.Getenv("TAGSHIP_REF")
	if len(os.Args) > 1 {
		rawRef = os.Args[1]
	}
	if rawRef == "" {
		log.Fatal("usage: tagship <ref>")
	}

	cfg := internal.Config
	p := pipeline.New(
		pipeline.Config{
			Repository:       cfg.Repository,
			ToolchainVersion: cfg.ToolchainVersion,
			Target:           cfg.Target,
			ArtifactName:     cfg.ArtifactName,
			PublishEnabled:   cfg.PublishEnabled,
		},
		workspace.NewPreparer(cfg.Repository, settings.Settings.WorkspaceRoot, gitAuth()),
		toolchain.NewBuilder(cfg.ToolchainVersion, cfg.Target, cfg.ArtifactName),
		newPublisher(cfg.Repository),
		service.EnvTokenSource{Value: resolveToken(rawRef)},
		func(line string) {
			fmt.Print(line)
		},
	)

	result := p.Run(context.Background(), rawRef)
	if result.Err != nil {
		fmt.Fprintln(os.Stderr, result.Err)
	}
	os.Exit(result.ExitCode())
}

func newPublisher(repository string) *release.GitHubPublisher {
	owner, name := util.SplitRepoPath(repository)
	return release.NewGitHubPublisher(owner, name)
}

// resolveToken prompts on a terminal when a version tag is about to be
// published without a configured token. Branch refs never publish, so
// they never prompt.
func resolveToken(rawRef string) string {
	token := settings.Settings.GitHubToken
	if token != "" || !internal.Config.PublishEnabled {
		return token
	}

	ev, err := event.Classify(rawRef)
	if err != nil || ev.Kind != event.RefTag {
		return token
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return token
	}
	fmt.Print("Publish token: ")
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		log.Fatal(err)
	}
	return string(b)
}

func gitAuth() transport.AuthMethod {
	s := settings.Settings
	if s.GitSSHKeyPath != "" {
		auth, err := workspace.KeyFileAuth(s.GitSSHUser, s.GitSSHKeyPath)
		if err != nil {
			log.Fatal(err)
		}
		return auth
	}
	if s.GitHubToken != "" {
		return workspace.TokenAuth(s.GitHubToken)
	}
	return nil
}
