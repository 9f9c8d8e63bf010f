// Package helpcenter serves the static help content and stores contact-support requests.
package helpcenter

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

var ErrArticleNotFound = errors.New("article not found")

type Article struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Body     string   `yaml:"body" json:"body"`
	Tags     []string `yaml:"tags" json:"tags"`
	Category string   `yaml:"-" json:"category"`
}

type Category struct {
	ID       string    `yaml:"id" json:"id"`
	Title    string    `yaml:"title" json:"title"`
	Articles []Article `yaml:"articles" json:"articles"`
}

type FAQ struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

type Content struct {
	Categories []Category `yaml:"categories" json:"categories"`
	FAQs       []FAQ      `yaml:"faqs" json:"faqs"`
}

// Center is read-only after construction.
type Center struct {
	content Content
	byID    map[string]Article
}

// Load parses help content. Article ids must be unique.
func Load(data []byte) (*Center, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse help content: %w", err)
	}
	byID := make(map[string]Article)
	for ci := range c.Categories {
		cat := &c.Categories[ci]
		for ai := range cat.Articles {
			a := &cat.Articles[ai]
			a.Category = cat.ID
			a.Body = strings.TrimSpace(a.Body)
			if _, dup := byID[a.ID]; dup {
				return nil, fmt.Errorf("duplicate help article %q", a.ID)
			}
			byID[a.ID] = *a
		}
	}
	return &Center{content: c, byID: byID}, nil
}

// Default returns the embedded help content.
func Default() (*Center, error) {
	return Load(defaultContent)
}

func (c *Center) Content() Content {
	return c.content
}

// Articles lists articles in content order, limited to category when it is not empty.
func (c *Center) Articles(category string) []Article {
	out := []Article{}
	for _, cat := range c.content.Categories {
		if category != "" && cat.ID != category {
			continue
		}
		for _, a := range cat.Articles {
			out = append(out, c.byID[a.ID])
		}
	}
	return out
}

func (c *Center) Article(id string) (Article, error) {
	a, ok := c.byID[id]
	if !ok {
		return Article{}, ErrArticleNotFound
	}
	return a, nil
}

// Search matches every word of q against titles, tags and bodies. Title matches rank first.
func (c *Center) Search(q string) []Article {
	words := strings.Fields(strings.ToLower(q))
	results := []Article{}
	if len(words) == 0 {
		return results
	}
	var titled []Article
	for _, cat := range c.content.Categories {
		for _, a := range cat.Articles {
			a.Category = cat.ID
			a.Body = strings.TrimSpace(a.Body)
			title := strings.ToLower(a.Title)
			text := title + " " + strings.ToLower(strings.Join(a.Tags, " ")) + " " + strings.ToLower(a.Body)
			all, inTitle := true, false
			for _, w := range words {
				if !strings.Contains(text, w) {
					all = false
					break
				}
				if strings.Contains(title, w) {
					inTitle = true
				}
			}
			if !all {
				continue
			}
			if inTitle {
				titled = append(titled, a)
			} else {
				results = append(results, a)
			}
		}
	}
	return append(titled, results...)
}
