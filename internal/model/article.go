package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
)

// Article is one entry of the news index. The markdown body is stored
// separately and travels alongside as a plain string.
type Article struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Date         string        `json:"date"`
	Category     string        `json:"category"`
	CategoryName string        `json:"categoryName"`
	Excerpt      string        `json:"excerpt"`
	Featured     bool          `json:"featured"`
	Status       ArticleStatus `json:"status"`
	File         string        `json:"file"`
}

// ArticleDraft carries the fields a caller supplies on create.
type ArticleDraft struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Date         string `json:"date"`
	Category     string `json:"category"`
	CategoryName string `json:"categoryName"`
	Excerpt      string `json:"excerpt"`
	Featured     bool   `json:"featured"`
	Status       string `json:"status"`
}

// ArticlePatch is a partial update. Nil fields mean "leave unchanged";
// Content in particular distinguishes absent (nil) from empty ("").
type ArticlePatch struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	Date         *string `json:"date"`
	Category     *string `json:"category"`
	CategoryName *string `json:"categoryName"`
	Excerpt      *string `json:"excerpt"`
	Featured     *bool   `json:"featured"`
	Status       *string `json:"status"`
}

// MissingFields reports which required create fields are absent.
func (d ArticleDraft) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", d.Title},
		{"content", d.Content},
		{"date", d.Date},
		{"category", d.Category},
		{"categoryName", d.CategoryName},
		{"excerpt", d.Excerpt},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// NewArticle builds an Article from a validated draft with a generated id
// and derived filename. Ids used to be timestamp+random suffix; they are
// opaque to every consumer, so UUIDs serve the same contract.
func NewArticle(d ArticleDraft) Article {
	a := Article{
		ID:           uuid.NewString(),
		Title:        d.Title,
		Date:         d.Date,
		Category:     d.Category,
		CategoryName: d.CategoryName,
		Excerpt:      d.Excerpt,
		Featured:     d.Featured,
		Status:       StatusDraft,
	}
	if d.Status != "" {
		a.Status = ArticleStatus(d.Status)
	}
	a.File = ArticleFilename(a.Date, a.Title)
	return a
}

// ArticleFilename derives the markdown filename from date and title.
// Derived only, never authoritative.
func ArticleFilename(date, title string) string {
	return fmt.Sprintf("%s-%s.md", date, Slugify(title))
}
