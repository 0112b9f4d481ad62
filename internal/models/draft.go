package models

import "time"

// NewsletterDraft is the rendered, not-yet-sent newsletter.
type NewsletterDraft struct {
	Subject     string         `json:"subject"`
	Categories  []CategoryNews `json:"categories"`
	HTMLContent string         `json:"html_content"`
}

// ItemCount returns the number of items across all categories.
func (d NewsletterDraft) ItemCount() int {
	n := 0
	for _, c := range d.Categories {
		n += len(c.Items)
	}
	return n
}

// URLs returns the link of every item in the draft, in category order.
func (d NewsletterDraft) URLs() []string {
	var urls []string
	for _, c := range d.Categories {
		for _, it := range c.Items {
			urls = append(urls, it.URL)
		}
	}
	return urls
}

// CategoryNews groups the selected items of one category.
type CategoryNews struct {
	Category string      `json:"category"`
	Items    []DraftItem `json:"items"`
}

// DraftItem is the simplified item record carried by a draft.
type DraftItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
}

// StoredDraft is a draft as persisted by the repository.
type StoredDraft struct {
	ID string `json:"id"`
	NewsletterDraft
	CreatedAt time.Time `json:"created_at"`
}
