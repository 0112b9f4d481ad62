package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

func TestCollect_Hierarchical(t *testing.T) {
	industry := &fakeCrawler{posts: []models.RawPost{
		post("news:yonhap:industry", "https://ex.com/1", "a", "x"),
		post("news:yonhap:industry", "https://ex.com/2", "b", "x"),
	}}
	phone := &fakeCrawler{posts: []models.RawPost{post("community:ppomppu:phone", "https://ex.com/3", "c", "x")}}
	broken := &fakeCrawler{err: errors.New("timeout")}

	reg := crawl.NewRegistry()
	reg.Register(crawl.Key{Group: "news", Source: "yonhap", Target: "industry"}, industry)
	reg.Register(crawl.Key{Group: "community", Source: "ppomppu", Target: "phone"}, phone)
	reg.Register(crawl.Key{Group: "community", Source: "clien", Target: "cm_phone"}, broken)

	repo := &memRepo{}
	runs := &fakeRuns{}
	b, err := NewBatchCollector(reg, repo, runs, 0)
	if err != nil {
		t.Fatalf("NewBatchCollector() error: %v", err)
	}

	res, err := b.Collect(context.Background(), BatchRequest{
		"news": {"yonhap": {
			"industry": {Pages: 2, Days: 3, Limit: 10},
			"economy":  {},
		}},
		"community": {
			"ppomppu": {"phone": {}},
			"clien":   {"cm_phone": {}},
		},
	})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if res.Saved != 3 {
		t.Errorf("Saved = %d, want 3", res.Saved)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "news:yonhap:economy" {
		t.Errorf("Skipped = %v, want [news:yonhap:economy]", res.Skipped)
	}
	if len(res.Failed) != 1 || res.Failed[0].Source != "community:clien:cm_phone" {
		t.Errorf("Failed = %+v, want community:clien:cm_phone", res.Failed)
	}
	if repo.batches != 2 {
		t.Errorf("SaveRawPosts called %d times, want once per successful leaf", repo.batches)
	}

	wantTarget := models.CrawlTarget{SourceName: "news:yonhap:industry", Category: "news", Limit: 10}
	if industry.target != wantTarget {
		t.Errorf("industry target = %+v, want %+v", industry.target, wantTarget)
	}
	if industry.opts != (crawl.Options{Pages: 2, Days: 3, Limit: 10}) {
		t.Errorf("industry opts = %+v, want forwarded options", industry.opts)
	}
	if phone.target.Limit != crawl.DefaultLimit {
		t.Errorf("phone limit = %d, want %d", phone.target.Limit, crawl.DefaultLimit)
	}

	if len(runs.runs) != 1 || runs.runs[0].Kind != models.RunKindBatch || runs.runs[0].PostsSaved != 3 {
		t.Errorf("runs = %+v, want one batch run with 3 saved", runs.runs)
	}
}

func TestCollect_PersistErrorStops(t *testing.T) {
	reg := crawl.NewRegistry()
	c := &fakeCrawler{posts: []models.RawPost{post("g:s:t", "https://ex.com/1", "a", "x")}}
	reg.Register(crawl.Key{Group: "g", Source: "s", Target: "t"}, c)
	reg.Register(crawl.Key{Group: "g", Source: "s", Target: "u"}, c)

	b, err := NewBatchCollector(reg, &memRepo{rawErr: errors.New("locked")}, nil, 0)
	if err != nil {
		t.Fatalf("NewBatchCollector() error: %v", err)
	}
	_, err = b.Collect(context.Background(), BatchRequest{"g": {"s": {"t": {}, "u": {}}}})

	var perr *PersistError
	if !errors.As(err, &perr) {
		t.Fatalf("Collect() error = %v, want PersistError", err)
	}
	if c.calls != 1 {
		t.Errorf("crawler called %d times, want 1 before stopping", c.calls)
	}
}

func TestCollect_EmptyRequest(t *testing.T) {
	b, _ := NewBatchCollector(crawl.NewRegistry(), &memRepo{}, nil, time.Second)
	res, err := b.Collect(context.Background(), BatchRequest{})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if res.Saved != 0 || len(res.Skipped) != 0 || len(res.Failed) != 0 {
		t.Errorf("Collect(empty) = %+v, want zero result", res)
	}
}

func TestCollect_TimeoutFailsTarget(t *testing.T) {
	reg := crawl.NewRegistry()
	reg.Register(crawl.Key{Group: "community", Source: "clien", Target: "slow"}, hangingCrawler{})
	b, err := NewBatchCollector(reg, &memRepo{}, nil, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewBatchCollector() error: %v", err)
	}

	res, err := b.Collect(context.Background(), BatchRequest{"community": {"clien": {"slow": {}}}})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0].Error != context.DeadlineExceeded.Error() {
		t.Errorf("Failed = %+v, want one deadline failure", res.Failed)
	}
}
