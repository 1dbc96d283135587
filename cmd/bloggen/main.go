// Command bloggen builds, previews, and publishes a static blog.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/eringen/bloggen"
)

// version is set at build time via ldflags.
var version = "dev"

var cli struct {
	Config  string           `short:"c" help:"Site configuration file path" default:"site.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	New      NewCmd      `cmd:"" help:"Create a new site skeleton"`
	Clean    CleanCmd    `cmd:"" help:"Remove the build directory"`
	Generate GenerateCmd `cmd:"" help:"Render the site into the build directory"`
	Run      RunCmd      `cmd:"" help:"Serve the site locally and rebuild on change, drafts included"`
	Push     PushCmd     `cmd:"" help:"Push the source repository's branch to its remote"`
	Publish  PublishCmd  `cmd:"" help:"Clean, regenerate, push source, and force-push the site to the hosting remote"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("bloggen"),
		kong.Description("A static blog generator and publisher."),
		kong.Vars{"version": version},
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := ctx.Run(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// openSite loads configuration and the site it describes.
func openSite() (*bloggen.Site, error) {
	cfg, err := bloggen.LoadConfig(cli.Config)
	if err != nil {
		return nil, err
	}
	return bloggen.Open(cfg)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// CleanCmd removes the build directory; it succeeds even when the
// directory is already gone.
type CleanCmd struct{}

func (*CleanCmd) Run() error {
	cfg, err := bloggen.LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	if err := bloggen.Clean(cfg); err != nil {
		return err
	}
	slog.Info("build directory removed", "dir", cfg.OutputDir)
	return nil
}

// GenerateCmd renders the site once.
type GenerateCmd struct {
	Output string `short:"o" help:"Override the build directory"`
	Drafts bool   `help:"Include draft posts"`
}

func (g *GenerateCmd) Run() error {
	cfg, err := bloggen.LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	if g.Output != "" {
		cfg.OutputDir = g.Output
	}
	site, err := bloggen.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = site.Close()
	}()

	_, err = site.Builder(g.Drafts).Build()
	return err
}

// RunCmd serves the site locally, rebuilding on change. Draft posts are
// included; the build directory holds preview output until the next clean.
type RunCmd struct {
	Addr string `help:"Override the preview listen address"`
}

func (r *RunCmd) Run() error {
	cfg, err := bloggen.LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	if r.Addr != "" {
		cfg.PreviewAddr = r.Addr
	}
	site, err := bloggen.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = site.Close()
	}()

	ctx, cancel := signalContext()
	defer cancel()
	return site.Preview().Start(ctx)
}

// PushCmd pushes the source repository's branch to its remote. It does
// not touch the generated output.
type PushCmd struct {
	SourceDir string `short:"s" help:"Site source repository root" default:"."`
}

func (p *PushCmd) Run() error {
	cfg, err := bloggen.LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return bloggen.NewPublisher(cfg, nil, p.SourceDir).PushSource(ctx)
}

// PublishCmd runs the full publish workflow.
type PublishCmd struct {
	SourceDir string `short:"s" help:"Site source repository root" default:"."`
}

func (p *PublishCmd) Run() error {
	site, err := openSite()
	if err != nil {
		return err
	}
	defer func() {
		_ = site.Close()
	}()

	ctx, cancel := signalContext()
	defer cancel()
	return site.Publisher(p.SourceDir).Publish(ctx)
}
