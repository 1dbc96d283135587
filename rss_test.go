package bloggen

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
)

var feedPosts = []Post{
	{Slug: "second", Title: "Second", Date: "2024-05-10", Summary: "Later post"},
	{Slug: "first", Title: "First & Foremost", Date: "2024-03-01", Summary: "Earlier post"},
}

func TestWriteFeed(t *testing.T) {
	cfg := SiteConfig{Name: "My Blog", URL: "https://example.com", Description: "A blog"}

	var buf bytes.Buffer
	if err := WriteFeed(&buf, cfg, feedPosts); err != nil {
		t.Fatalf("WriteFeed: %v", err)
	}

	var feed struct {
		Version string `xml:"version,attr"`
		Channel struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
			Items []struct {
				Title   string `xml:"title"`
				Link    string `xml:"link"`
				PubDate string `xml:"pubDate"`
				GUID    string `xml:"guid"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &feed); err != nil {
		t.Fatalf("invalid XML: %v\n%s", err, buf.String())
	}
	if feed.Version != "2.0" {
		t.Errorf("version = %q", feed.Version)
	}
	if feed.Channel.Title != "My Blog" {
		t.Errorf("channel title = %q", feed.Channel.Title)
	}
	if len(feed.Channel.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(feed.Channel.Items))
	}
	item := feed.Channel.Items[1]
	if item.Title != "First & Foremost" {
		t.Errorf("item title = %q", item.Title)
	}
	if item.Link != "https://example.com/blog/first/" {
		t.Errorf("item link = %q", item.Link)
	}
	if item.GUID != item.Link {
		t.Errorf("guid = %q, want same as link", item.GUID)
	}
	if !strings.Contains(item.PubDate, "2024") {
		t.Errorf("pubDate = %q", item.PubDate)
	}
}

func TestWriteSitemap(t *testing.T) {
	cfg := SiteConfig{URL: "https://example.com"}

	var buf bytes.Buffer
	if err := WriteSitemap(&buf, cfg, feedPosts); err != nil {
		t.Fatalf("WriteSitemap: %v", err)
	}

	var sitemap struct {
		URLs []struct {
			Loc     string `xml:"loc"`
			LastMod string `xml:"lastmod"`
		} `xml:"url"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &sitemap); err != nil {
		t.Fatalf("invalid XML: %v\n%s", err, buf.String())
	}
	if len(sitemap.URLs) != 3 {
		t.Fatalf("got %d urls, want 3 (root + 2 posts)", len(sitemap.URLs))
	}
	if sitemap.URLs[0].Loc != "https://example.com" {
		t.Errorf("root loc = %q", sitemap.URLs[0].Loc)
	}
	if sitemap.URLs[1].Loc != "https://example.com/blog/second/" || sitemap.URLs[1].LastMod != "2024-05-10" {
		t.Errorf("post url = %+v", sitemap.URLs[1])
	}
}
