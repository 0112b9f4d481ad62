package pipeline

import (
	"testing"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

func item(cat models.Category, title, url, summary string) models.NewsItem {
	return models.NewsItem{Title: title, URL: url, Category: cat, SourceName: "etnews", Summary: &models.Summary{Text: summary}}
}

func TestSelectCategories(t *testing.T) {
	items := []models.NewsItem{
		item(models.CategoryKT, "kt1", "u1", "s"),
		item(models.CategorySKT, "skt1", "u2", "s"),
		item(models.CategoryKT, "kt2", "u3", "s"),
		item(models.CategoryKT, "kt3", "u4", "s"),
		item(models.CategoryKT, "kt4", "u5", "s"),
	}

	got := SelectCategories(items, 3)
	if len(got) != 2 {
		t.Fatalf("SelectCategories() = %d buckets, want 2", len(got))
	}
	if got[0].Category != "KT" || got[1].Category != "SKT" {
		t.Errorf("bucket order = %s, %s, want KT, SKT", got[0].Category, got[1].Category)
	}
	if len(got[0].Items) != 3 || got[0].Items[2].Title != "kt3" {
		t.Errorf("KT bucket = %+v, want kt1..kt3", got[0].Items)
	}
	if got[1].Items[0].Source != "etnews" || got[1].Items[0].Summary != "s" {
		t.Errorf("SKT item = %+v, want source and summary copied", got[1].Items[0])
	}
}

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name string
		cats []models.CategoryNews
		want string
	}{
		{"empty", nil, ""},
		{
			"two sections",
			[]models.CategoryNews{
				{Category: "SKT", Items: []models.DraftItem{{Title: "a", URL: "https://ex.com/a", Summary: "sa"}, {Title: "b", URL: "https://ex.com/b", Summary: "sb"}}},
				{Category: "KT", Items: []models.DraftItem{{Title: "c", URL: "https://ex.com/c", Summary: "sc"}}},
			},
			`<h3>SKT</h3><ul><li><a href="https://ex.com/a">a</a><br/><small>sa</small></li><li><a href="https://ex.com/b">b</a><br/><small>sb</small></li></ul>` + "\n" +
				`<h3>KT</h3><ul><li><a href="https://ex.com/c">c</a><br/><small>sc</small></li></ul>`,
		},
		{
			"escapes text",
			[]models.CategoryNews{{Category: "KT", Items: []models.DraftItem{{Title: `<b>"x"</b>`, URL: "https://ex.com/?a=1&b=2", Summary: "5 < 6"}}}},
			`<h3>KT</h3><ul><li><a href="https://ex.com/?a=1&amp;b=2">&lt;b&gt;&#34;x&#34;&lt;/b&gt;</a><br/><small>5 &lt; 6</small></li></ul>`,
		},
		{
			"unsafe scheme is not linked",
			[]models.CategoryNews{{Category: "KT", Items: []models.DraftItem{
				{Title: "js", URL: "javascript:alert(1)", Summary: "s"},
				{Title: "data", URL: "data:text/html,x", Summary: "s"},
				{Title: "relative", URL: "/board/1", Summary: "s"},
				{Title: "ok", URL: "http://ex.com/1", Summary: "s"},
			}}},
			`<h3>KT</h3><ul><li>js<br/><small>s</small></li><li>data<br/><small>s</small></li><li>relative<br/><small>s</small></li>` +
				`<li><a href="http://ex.com/1">ok</a><br/><small>s</small></li></ul>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderHTML(tt.cats); got != tt.want {
				t.Errorf("RenderHTML() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestBuildDraft(t *testing.T) {
	d := BuildDraft("제목", []models.NewsItem{item(models.CategoryLGU, "t", "u", "s")}, 3)
	if d.Subject != "제목" || d.ItemCount() != 1 || d.HTMLContent == "" {
		t.Errorf("BuildDraft() = %+v, want subject, one item and HTML", d)
	}
}
