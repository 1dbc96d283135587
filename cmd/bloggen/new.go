package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/eringen/bloggen/scaffold"
)

// NewCmd creates a new site skeleton from the embedded scaffold.
type NewCmd struct {
	Name string `arg:"" help:"Site directory name, e.g. myblog"`
}

// scaffoldData holds the template variables passed to .tmpl scaffold files.
type scaffoldData struct {
	SiteName string
	Date     string
}

func (n *NewCmd) Run() error {
	dirName := n.Name

	if _, err := os.Stat(dirName); err == nil {
		return fmt.Errorf("directory %q already exists", dirName)
	}

	data := scaffoldData{
		SiteName: toTitle(dirName),
		Date:     time.Now().Format("2006-01-02"),
	}

	fmt.Printf("Creating new site: %s\n\n", dirName)

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		outPath := filepath.Join(dirName, relPath)
		isTemplate := strings.HasSuffix(outPath, ".tmpl")
		outPath = strings.TrimSuffix(outPath, ".tmpl")

		// Dotfiles cannot live in the embedded tree under their real names.
		switch filepath.Base(outPath) {
		case "dotenv":
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		case "gitignore":
			outPath = filepath.Join(filepath.Dir(outPath), ".gitignore")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}

		// Theme files contain html/template syntax and must survive
		// verbatim; only .tmpl files are executed as templates.
		if isTemplate {
			tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
			if err != nil {
				return fmt.Errorf("parse template %s: %w", path, err)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer func() {
				_ = f.Close()
			}()
			if err := tmpl.Execute(f, data); err != nil {
				return fmt.Errorf("execute template %s: %w", path, err)
			}
		} else {
			if err := os.WriteFile(outPath, content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
		}

		fmt.Printf("  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dirName, "static"), 0o755); err != nil {
		return err
	}

	// Initialize the source repository so push and publish work later.
	if _, err := git.PlainInit(dirName, false); err != nil {
		fmt.Fprintf(os.Stderr, "\nWarning: git init failed: %v\n", err)
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cd %s\n", dirName)
	fmt.Println("  bloggen run")
	fmt.Println()
	fmt.Println("Set publish.remote_url in site.yaml and add an origin remote")
	fmt.Println("before running 'bloggen publish'.")
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
