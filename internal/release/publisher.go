package release

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v66/github"
)

type PublishCause string

const (
	CauseAuth     PublishCause = "auth"
	CauseUpload   PublishCause = "upload"
	CausePlatform PublishCause = "platform"
)

type PublishError struct {
	Cause PublishCause
	Err   error
}

func (pe PublishError) Error() string {
	return fmt.Sprintf("err publishing release (%s): %v", pe.Cause, pe.Err)
}

func (pe PublishError) Unwrap() error {
	return pe.Err
}

// GitHubPublisher creates draft releases on the hosting platform. The
// credential is passed per call, not held by the publisher: no stage
// before publish ever sees it.
type GitHubPublisher struct {
	owner string
	repo  string

	// baseURL overrides the API endpoint, for tests.
	baseURL string
}

func NewGitHubPublisher(owner, repo string) *GitHubPublisher {
	return &GitHubPublisher{owner: owner, repo: repo}
}

func (p *GitHubPublisher) client(token string) (*github.Client, error) {
	client := github.NewClient(nil).WithAuthToken(token)
	if p.baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(p.baseURL, p.baseURL)
		if err != nil {
			return nil, err
		}
	}
	return client, nil
}

// CreateDraftRelease creates a new draft release described by d and uploads
// each of its files as release assets. It always creates a fresh release:
// a prior draft for the same tag is left untouched.
func (p *GitHubPublisher) CreateDraftRelease(
	ctx context.Context,
	d Descriptor,
	token string,
) (int64, error) {
	client, err := p.client(token)
	if err != nil {
		return 0, PublishError{Cause: CausePlatform, Err: err}
	}

	rel, resp, err := client.Repositories.CreateRelease(
		ctx, p.owner, p.repo,
		&github.RepositoryRelease{
			TagName:    github.String(d.TagName),
			Name:       github.String(d.Name),
			Draft:      github.Bool(d.Draft),
			Prerelease: github.Bool(d.Prerelease),
		},
	)
	if err != nil {
		return 0, PublishError{Cause: causeFromResponse(resp), Err: err}
	}

	for _, file := range d.Files {
		f, err := os.Open(file)
		if err != nil {
			return rel.GetID(), PublishError{Cause: CauseUpload, Err: err}
		}
		_, _, err = client.Repositories.UploadReleaseAsset(
			ctx, p.owner, p.repo, rel.GetID(),
			&github.UploadOptions{Name: filepath.Base(file)},
			f,
		)
		f.Close()
		if err != nil {
			return rel.GetID(), PublishError{Cause: CauseUpload, Err: err}
		}
	}

	return rel.GetID(), nil
}

func causeFromResponse(resp *github.Response) PublishCause {
	if resp != nil &&
		(resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return CauseAuth
	}
	return CausePlatform
}
