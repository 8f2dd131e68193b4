// Package store resolves article IDs to their on-disk files through
// article_mapping.json and handles article reads and rectified-article
// persistence.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/net/html"

	"github.com/pmarkov/rectify/internal/model"
)

// Store reads and writes articles through the mapping file. File contents
// are cached: batch runs revisit the mapping on every article and often
// share source articles between entries.
type Store struct {
	mappingFile string
	cache       *gocache.Cache
	ttl         time.Duration
}

// New creates a Store for the given mapping file.
func New(cfg model.StoreConfig) *Store {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{
		mappingFile: cfg.MappingFile,
		cache:       gocache.New(ttl, 2*ttl),
		ttl:         ttl,
	}
}

// Mapping loads and returns all mapping entries in file order.
func (s *Store) Mapping() ([]model.MappingEntry, error) {
	data, err := s.readFile(s.mappingFile)
	if err != nil {
		return nil, fmt.Errorf("read mapping %s: %w", s.mappingFile, err)
	}

	var entries []model.MappingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", s.mappingFile, err)
	}
	return entries, nil
}

// Lookup returns the mapping entry for an article ID. A missing ID is a
// hard error surfaced to the caller, never retried.
func (s *Store) Lookup(articleID string) (*model.MappingEntry, error) {
	entries, err := s.Mapping()
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].ArticleID == articleID {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("article %s not found in mapping", articleID)
}

// AIArticle returns the AI-generated text for an article ID.
func (s *Store) AIArticle(articleID string) (string, error) {
	entry, err := s.Lookup(articleID)
	if err != nil {
		return "", err
	}
	return s.readArticle(entry.AIFile)
}

// SourceArticle returns the trusted source text for an article ID.
// HTML sources are reduced to their visible text.
func (s *Store) SourceArticle(articleID string) (string, error) {
	entry, err := s.Lookup(articleID)
	if err != nil {
		return "", err
	}
	return s.readArticle(entry.SourceFile)
}

// SaveRectified durably stores the rectified text for an article,
// creating the output directory if needed. It must succeed even when the
// text being stored is an unmodified fallback.
func (s *Store) SaveRectified(articleID, content string) error {
	entry, err := s.Lookup(articleID)
	if err != nil {
		return err
	}

	dir := filepath.Dir(entry.RectifiedFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	if err := os.WriteFile(entry.RectifiedFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("write rectified article %s: %w", entry.RectifiedFile, err)
	}
	return nil
}

// readArticle reads an article file and extracts plain text from HTML
// sources. Trusted sources scraped from the web are stored as .html; the
// pipeline only ever sees visible text.
func (s *Store) readArticle(path string) (string, error) {
	data, err := s.readFile(path)
	if err != nil {
		return "", fmt.Errorf("read article %s: %w", path, err)
	}

	content := string(data)
	if isHTML(path, content) {
		text, err := extractVisibleText(content)
		if err != nil {
			return "", fmt.Errorf("extract text from %s: %w", path, err)
		}
		return text, nil
	}
	return content, nil
}

// readFile reads a file through the cache.
func (s *Store) readFile(path string) ([]byte, error) {
	if data, found := s.cache.Get(path); found {
		return data.([]byte), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s.cache.Set(path, data, s.ttl)
	return data, nil
}

// isHTML reports whether a file should be treated as HTML markup.
func isHTML(path, content string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html")
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Skip script, style, noscript tags
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return strings.TrimSpace(buf.String()), nil
}
