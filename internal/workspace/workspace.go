// Package workspace materializes the repository under release into a
// per-run working directory. Clones are always full history: downstream
// tooling reads tag metadata to compute versions, so shallow copies are
// never good enough.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"golang.org/x/crypto/ssh"

	"github.com/tagship/tagship/internal"
	"github.com/tagship/tagship/internal/event"
)

type PrepareError struct {
	Repository string
	Err        error
}

func (pe PrepareError) Error() string {
	return fmt.Sprintf("err preparing workspace for %s: %v", pe.Repository, pe.Err)
}

func (pe PrepareError) Unwrap() error {
	return pe.Err
}

// Workspace is one run's working copy. It is owned exclusively by that run
// and removed only by explicit cleanup, never on failure: the artifact must
// survive a failed publish for manual recovery.
type Workspace struct {
	Dir  string
	repo *git.Repository
}

// Head returns the checked out commit hash.
func (w *Workspace) Head() (string, error) {
	if w.repo == nil {
		return "", fmt.Errorf("workspace %s has no repository", w.Dir)
	}
	ref, err := w.repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

func (w *Workspace) Remove() error {
	return os.RemoveAll(w.Dir)
}

type Preparer struct {
	repository string
	baseDir    string
	auth       transport.AuthMethod
}

func NewPreparer(repository, baseDir string, auth transport.AuthMethod) *Preparer {
	return &Preparer{
		repository: repository,
		baseDir:    baseDir,
		auth:       auth,
	}
}

// Prepare clones the repository with full commit history and all tags into
// a fresh directory under the preparer's base directory, then checks out
// the triggering ref so the build compiles the pushed commit, not whatever
// the default branch currently points at. Network and auth failures are
// fatal for the run; retry policy belongs to the caller's scheduler, not
// here.
func (p *Preparer) Prepare(ctx context.Context, ev event.TriggerEvent) (*Workspace, error) {
	dir := filepath.Join(p.baseDir, time.Now().UTC().Format(internal.RunDirLayout))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, PrepareError{Repository: p.repository, Err: err}
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   p.repository,
		Auth:  p.auth,
		Depth: 0,
		Tags:  git.AllTags,
	})
	if err != nil {
		return nil, PrepareError{Repository: p.repository, Err: err}
	}

	if err := checkoutRef(repo, ev.Ref); err != nil {
		return nil, PrepareError{Repository: p.repository, Err: err}
	}

	return &Workspace{Dir: dir, repo: repo}, nil
}

// checkoutRef moves the worktree to the named tag or branch. Annotated
// tags are peeled to their commit by the revision resolver.
func checkoutRef(repo *git.Repository, ref string) error {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return fmt.Errorf("resolving ref %s: %w", ref, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash})
}

// TokenAuth returns HTTPS basic auth for a host access token.
func TokenAuth(token string) transport.AuthMethod {
	return &githttp.BasicAuth{Username: "token", Password: token}
}

// KeyFileAuth returns SSH public key auth from a private key file.
func KeyFileAuth(user, keyPath string) (transport.AuthMethod, error) {
	if user == "" {
		user = "git"
	}
	keys, err := gitssh.NewPublicKeysFromFile(user, keyPath, "")
	if err != nil {
		return nil, err
	}
	keys.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	return keys, nil
}
