package bloggen

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Trimmed  ", "trimmed"},
		{"Already-Slugged", "already-slugged"},
		{"Symbols & Things!", "symbols-things"},
		{"multiple   spaces", "multiple-spaces"},
		{"Trailing punctuation?!", "trailing-punctuation"},
		{"Numbers 123", "numbers-123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"blog", "my-post"}, "https://example.com/blog/my-post/"},
		{"https://example.com/", []string{"tags", "go"}, "https://example.com/tags/go/"},
		{"https://example.com/sub", []string{"blog", "p"}, "https://example.com/sub/blog/p/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"a", "", "  ", "b"})
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterEmpty = %v, want %v", got, want)
	}
}

func TestFilterTag(t *testing.T) {
	posts := []Post{
		{Slug: "a", Tags: []string{"Go", "web"}},
		{Slug: "b", Tags: []string{"rust"}},
		{Slug: "c", Tags: []string{"go"}},
	}

	got := FilterTag(posts, "go")
	if len(got) != 2 || got[0].Slug != "a" || got[1].Slug != "c" {
		t.Errorf("FilterTag(go) = %v", got)
	}

	if got := FilterTag(posts, ""); len(got) != 3 {
		t.Errorf("FilterTag with empty tag should return all posts, got %d", len(got))
	}

	if got := FilterTag(posts, "missing"); len(got) != 0 {
		t.Errorf("FilterTag(missing) = %v, want none", got)
	}
}

func TestListTags(t *testing.T) {
	posts := []Post{
		{Tags: []string{"Go", "web"}},
		{Tags: []string{"go", "rust"}},
	}
	got := ListTags(posts)
	want := []string{"go", "rust", "web"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListTags = %v, want %v", got, want)
	}
}

func TestFilterRelatedPosts(t *testing.T) {
	current := Post{Slug: "a", Tags: []string{"go"}}
	posts := []Post{
		{Slug: "a", Tags: []string{"go"}},
		{Slug: "b", Tags: []string{"Go", "web"}},
		{Slug: "c", Tags: []string{"rust"}},
	}
	got := FilterRelatedPosts(current, posts)
	if len(got) != 1 || got[0].Slug != "b" {
		t.Errorf("FilterRelatedPosts = %v, want [b]", got)
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	cfg := SiteConfig{
		Name:        "My Blog",
		URL:         "https://example.com",
		Description: "A test blog",
		Author:      "Jamie",
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(WebsiteJsonLD(cfg)), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data["@type"] != "WebSite" {
		t.Errorf("@type = %v", data["@type"])
	}
	if data["name"] != "My Blog" {
		t.Errorf("name = %v", data["name"])
	}
	author, ok := data["author"].(map[string]interface{})
	if !ok || author["name"] != "Jamie" {
		t.Errorf("author = %v", data["author"])
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "My Blog", URL: "https://example.com"}
	post := Post{Slug: "hello", Title: "Hello", Date: "2024-03-01", Summary: "Hi"}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data["@type"] != "BlogPosting" {
		t.Errorf("@type = %v", data["@type"])
	}
	if data["url"] != "https://example.com/blog/hello/" {
		t.Errorf("url = %v", data["url"])
	}
	if data["datePublished"] != "2024-03-01" {
		t.Errorf("datePublished = %v", data["datePublished"])
	}
	if _, ok := data["author"]; ok {
		t.Error("author should be omitted when config has none")
	}
}
