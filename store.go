package bloggen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("bloggen: post not found")

// Store loads blog posts from a directory tree of Markdown files.
// Posts are read-only: the store never mutates the content directory.
type Store struct {
	dir string
}

// NewStore creates a Store reading from the given content directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// postMatter is the YAML front-matter block every post starts with.
type postMatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Tags     []string `yaml:"tags"`
	Category string   `yaml:"category"`
	Summary  string   `yaml:"summary"`
	Slug     string   `yaml:"slug"`
	Draft    bool     `yaml:"draft"`
}

// LoadPosts reads every .md file under the content directory and returns
// all posts (drafts included) ordered by date descending. A missing
// content directory yields zero posts; a malformed post is a hard error
// so a broken content store can never produce a partial site.
func (s *Store) LoadPosts() ([]Post, error) {
	var posts []Post
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil && os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		post, err := s.loadPost(path)
		if err != nil {
			return err
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

// GetPost returns a single post by slug.
func (s *Store) GetPost(slug string) (Post, error) {
	posts, err := s.LoadPosts()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func (s *Store) loadPost(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Post{}, err
	}

	var matter postMatter
	body, err := frontmatter.MustParse(bytes.NewReader(data), &matter)
	if err != nil {
		return Post{}, fmt.Errorf("parse front-matter in %s: %w", path, err)
	}

	if matter.Title == "" {
		return Post{}, fmt.Errorf("post %s: front-matter is missing a title", path)
	}
	if matter.Date == "" {
		return Post{}, fmt.Errorf("post %s: front-matter is missing a date", path)
	}
	if _, err := time.Parse("2006-01-02", matter.Date); err != nil {
		return Post{}, fmt.Errorf("post %s: invalid date %q (want YYYY-MM-DD): %w", path, matter.Date, err)
	}

	slug := matter.Slug
	if slug == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		slug = Slugify(base)
	}
	if slug == "" {
		slug = Slugify(matter.Title)
	}
	if slug == "" {
		return Post{}, fmt.Errorf("post %s: cannot derive a slug", path)
	}

	return Post{
		Slug:       slug,
		Title:      matter.Title,
		Date:       matter.Date,
		Tags:       FilterEmpty(matter.Tags),
		Category:   matter.Category,
		Summary:    matter.Summary,
		Draft:      matter.Draft,
		Link:       "/blog/" + slug + "/",
		SourcePath: path,
		Content:    string(body),
	}, nil
}
