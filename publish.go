package bloggen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Publisher executes the publish workflow: clean the build directory,
// regenerate the site, push the source repository's branch, then wrap the
// build output in a brand-new history-less repository and force-push it to
// the hosting remote. Steps run strictly in order; the first failure
// aborts the rest with no rollback and no retry, so a failed push leaves
// the hosting remote untouched.
type Publisher struct {
	cfg       SiteConfig
	builder   *Builder
	sourceDir string
}

// NewPublisher creates a Publisher. sourceDir is the root of the site's
// own git repository (usually ".").
func NewPublisher(cfg SiteConfig, builder *Builder, sourceDir string) *Publisher {
	return &Publisher{cfg: cfg, builder: builder, sourceDir: sourceDir}
}

// Publish runs the full workflow.
func (p *Publisher) Publish(ctx context.Context) error {
	if p.cfg.Publish.RemoteURL == "" {
		return errors.New("publish: publish.remote_url is not configured")
	}

	if err := p.builder.Clean(); err != nil {
		return fmt.Errorf("publish: clean: %w", err)
	}
	if _, err := p.builder.Build(); err != nil {
		return fmt.Errorf("publish: generate: %w", err)
	}
	if err := p.PushSource(ctx); err != nil {
		return fmt.Errorf("publish: push source: %w", err)
	}
	if err := p.publishOutput(ctx); err != nil {
		return fmt.Errorf("publish: push site: %w", err)
	}
	slog.Info("site published", "remote", p.cfg.Publish.RemoteURL, "branch", p.cfg.Publish.Branch)
	return nil
}

// PushSource checks out the configured source branch in the site's own
// repository and pushes it to the source remote. This operates on the
// Markdown sources, not the generated output.
func (p *Publisher) PushSource(ctx context.Context) error {
	repo, err := git.PlainOpen(p.sourceDir)
	if err != nil {
		return fmt.Errorf("open source repository %s: %w", p.sourceDir, err)
	}

	branch := p.cfg.Publish.SourceBranch
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("source worktree: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("source HEAD: %w", err)
	}
	wanted := plumbing.NewBranchReferenceName(branch)
	if head.Name() != wanted {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: wanted}); err != nil {
			return fmt.Errorf("checkout %s: %w", branch, err)
		}
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: p.cfg.Publish.SourceRemote,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push %s to %s: %w", branch, p.cfg.Publish.SourceRemote, err)
	}
	slog.Info("source pushed", "branch", branch, "remote", p.cfg.Publish.SourceRemote)
	return nil
}

// publishOutput initializes a fresh repository inside the build directory,
// commits every generated file, and force-pushes that single commit to the
// hosting remote, discarding the remote branch's prior history.
func (p *Publisher) publishOutput(ctx context.Context) error {
	outDir := p.cfg.OutputDir

	// The output repository never carries history across publishes.
	if err := os.RemoveAll(filepath.Join(outDir, ".git")); err != nil {
		return fmt.Errorf("remove stale output repository: %w", err)
	}

	repo, err := git.PlainInit(outDir, false)
	if err != nil {
		return fmt.Errorf("init output repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("output worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage generated files: %w", err)
	}

	author := p.cfg.Author
	if author == "" {
		author = "bloggen"
	}
	commit, err := wt.Commit(p.cfg.Publish.CommitMessage, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: "bloggen@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit generated files: %w", err)
	}

	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{p.cfg.Publish.RemoteURL},
	}); err != nil {
		return fmt.Errorf("add hosting remote: %w", err)
	}

	auth, err := authMethod(p.cfg.Publish.Auth)
	if err != nil {
		return fmt.Errorf("publish auth: %w", err)
	}

	branch := p.cfg.Publish.Branch
	refSpec := gitconfig.RefSpec(fmt.Sprintf("+refs/heads/master:refs/heads/%s", branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("force-push to %s: %w", p.cfg.Publish.RemoteURL, err)
	}

	slog.Info("build output pushed", "commit", commit.String()[:8], "branch", branch)
	return nil
}

// authMethod builds a go-git transport auth method from config.
func authMethod(auth *AuthConfig) (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}
	switch auth.Type {
	case "none", "":
		return nil, nil

	case "ssh":
		keyPath := auth.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		publicKeys, err := gitssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("load SSH key from %s: %w", keyPath, err)
		}
		return publicKeys, nil

	case "token":
		if auth.Token == "" {
			return nil, errors.New("token authentication requires a token")
		}
		return &githttp.BasicAuth{
			Username: "token", // GitHub/GitLab use "token" as username
			Password: auth.Token,
		}, nil

	case "basic":
		if auth.Username == "" || auth.Password == "" {
			return nil, errors.New("basic authentication requires username and password")
		}
		return &githttp.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", auth.Type)
	}
}
