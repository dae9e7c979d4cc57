package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/promptscrape/internal/engine"
	"github.com/law-makers/promptscrape/internal/prompt"
	"github.com/law-makers/promptscrape/internal/quota"
	"github.com/law-makers/promptscrape/internal/resolver"
	"github.com/law-makers/promptscrape/pkg/models"
)

// fakeRunner returns a canned outcome and captures its inputs
type fakeRunner struct {
	outcome *models.Outcome
	targets []models.TargetDescriptor
	reqs    models.Requirements
	calls   int
}

func (f *fakeRunner) Run(ctx context.Context, targets []models.TargetDescriptor, reqs models.Requirements) *models.Outcome {
	f.calls++
	f.targets = targets
	f.reqs = reqs
	if f.outcome != nil {
		return f.outcome
	}
	return &models.Outcome{Records: []*models.Record{}}
}

func record(t *testing.T, url string) *models.Record {
	t.Helper()
	rec, err := models.NewRecord(url, "example.com", 1.0, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	rec.Set("title", "a record")
	return rec
}

func newService(runner Runner, tracker *quota.Tracker) *Service {
	return New(prompt.NewAnalyzer(nil), resolver.New(nil), runner, tracker)
}

func TestScrapeSuccess(t *testing.T) {
	runner := &fakeRunner{}
	svc := newService(runner, nil)
	runner.outcome = &models.Outcome{
		Records:   []*models.Record{record(t, "https://www.flipkart.com/p/1")},
		Succeeded: 1, SuccessRate: 1.0,
	}

	resp, err := svc.Scrape(context.Background(),
		models.ScrapeRequest{Prompt: "scrape 10 mobiles from flipkart"},
		models.Requirements{})
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if !resp.Success {
		t.Errorf("Expected success, message: %s", resp.Message)
	}
	if resp.RecordCount != 1 || len(resp.Results) != 1 {
		t.Errorf("Unexpected record count: %d", resp.RecordCount)
	}
	if resp.Website != "flipkart.com" {
		t.Errorf("Expected flipkart.com attribution, got %s", resp.Website)
	}
	if runner.calls != 1 {
		t.Errorf("Expected one run, got %d", runner.calls)
	}
	if runner.reqs.MaxItems != 10 {
		t.Errorf("Parsed count not forwarded, got %d", runner.reqs.MaxItems)
	}
}

func TestScrapeEmptyPromptRejected(t *testing.T) {
	svc := newService(&fakeRunner{}, nil)

	for _, p := range []string{"", "   ", "\n\t"} {
		_, err := svc.Scrape(context.Background(), models.ScrapeRequest{Prompt: p}, models.Requirements{})
		if engine.KindOf(err) != engine.KindInvalidPrompt {
			t.Errorf("Prompt %q: expected invalid-prompt error, got %v", p, err)
		}
	}
}

func TestScrapeOverlongPromptRejected(t *testing.T) {
	svc := newService(&fakeRunner{}, nil)

	long := strings.Repeat("x", MaxPromptLen+1)
	_, err := svc.Scrape(context.Background(), models.ScrapeRequest{Prompt: long}, models.Requirements{})
	if engine.KindOf(err) != engine.KindInvalidPrompt {
		t.Errorf("Expected invalid-prompt error, got %v", err)
	}

	// Exactly at the bound is fine
	runner := &fakeRunner{}
	svc = newService(runner, nil)
	exact := strings.Repeat("x", MaxPromptLen)
	if _, err := svc.Scrape(context.Background(), models.ScrapeRequest{Prompt: exact}, models.Requirements{}); err != nil {
		t.Errorf("Prompt at the limit rejected: %v", err)
	}
}

func TestScrapeZeroTargets(t *testing.T) {
	runner := &fakeRunner{}
	svc := newService(runner, nil)

	resp, err := svc.Scrape(context.Background(),
		models.ScrapeRequest{Prompt: "asdf qwer zxcv"}, models.Requirements{})
	if err != nil {
		t.Fatalf("Zero targets must not be an error: %v", err)
	}
	if resp.Success {
		t.Error("Expected unsuccessful response")
	}
	if runner.calls != 0 {
		t.Error("Runner must not run without targets")
	}
}

func TestScrapeZeroRecords(t *testing.T) {
	runner := &fakeRunner{outcome: &models.Outcome{Records: []*models.Record{}}}
	svc := newService(runner, nil)

	resp, err := svc.Scrape(context.Background(),
		models.ScrapeRequest{Prompt: "mobiles on flipkart"}, models.Requirements{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Success {
		t.Error("Expected unsuccessful response for zero records")
	}
	if resp.Message == "" {
		t.Error("Expected explanatory message")
	}
}

func TestScrapeQuotaDenied(t *testing.T) {
	tracker := quota.NewTracker(filepath.Join(t.TempDir(), "quota.json"), 1)
	runner := &fakeRunner{outcome: &models.Outcome{
		Records: []*models.Record{record(t, "https://www.flipkart.com/p/1")}, Succeeded: 1,
	}}
	svc := newService(runner, tracker)
	req := models.ScrapeRequest{Prompt: "mobiles on flipkart", Identity: "tester"}

	if _, err := svc.Scrape(context.Background(), req, models.Requirements{}); err != nil {
		t.Fatalf("First scrape failed: %v", err)
	}

	_, err := svc.Scrape(context.Background(), req, models.Requirements{})
	if engine.KindOf(err) != engine.KindQuotaExceeded {
		t.Errorf("Expected quota error, got %v", err)
	}
}

func TestScrapeAdminBypassesQuota(t *testing.T) {
	tracker := quota.NewTracker(filepath.Join(t.TempDir(), "quota.json"), 1)
	runner := &fakeRunner{outcome: &models.Outcome{
		Records: []*models.Record{record(t, "https://www.flipkart.com/p/1")}, Succeeded: 1,
	}}
	svc := newService(runner, tracker)
	req := models.ScrapeRequest{Prompt: "mobiles on flipkart", Identity: "admin", Admin: true}

	for i := 0; i < 3; i++ {
		if _, err := svc.Scrape(context.Background(), req, models.Requirements{}); err != nil {
			t.Fatalf("Admin scrape %d failed: %v", i, err)
		}
	}
}

func TestAnalyzeValidatesPrompt(t *testing.T) {
	svc := newService(&fakeRunner{}, nil)

	if _, err := svc.Analyze(""); engine.KindOf(err) != engine.KindInvalidPrompt {
		t.Errorf("Expected invalid-prompt error, got %v", err)
	}

	parsed, err := svc.Analyze("scrape 12 laptops from amazon")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if parsed.MaxItems != 12 {
		t.Errorf("Expected max items 12, got %d", parsed.MaxItems)
	}
}

func TestScrapeDerivesFieldsFromPrompt(t *testing.T) {
	runner := &fakeRunner{}
	svc := newService(runner, nil)

	_, err := svc.Scrape(context.Background(),
		models.ScrapeRequest{Prompt: "scrape 10 mobiles from flipkart with photos and links"},
		models.Requirements{})
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	for _, want := range []string{"title", "price", "image", "link"} {
		found := false
		for _, f := range runner.reqs.Fields {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Inferred field %q missing from requirements %v", want, runner.reqs.Fields)
		}
	}
	if !runner.reqs.IncludeImages {
		t.Error("Inferred image field should enable image capture")
	}
	if !runner.reqs.IncludeLinks {
		t.Error("Inferred link field should enable link capture")
	}
}

func TestScrapeExplicitFieldsWin(t *testing.T) {
	runner := &fakeRunner{}
	svc := newService(runner, nil)

	_, err := svc.Scrape(context.Background(),
		models.ScrapeRequest{Prompt: "scrape 10 mobiles from flipkart with photos"},
		models.Requirements{Fields: []string{"price"}})
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if len(runner.reqs.Fields) != 1 || runner.reqs.Fields[0] != "price" {
		t.Errorf("Explicit fields overridden: %v", runner.reqs.Fields)
	}
	if runner.reqs.IncludeImages {
		t.Error("Explicit field list should not switch on image capture")
	}
}

func TestReconcileMaxItems(t *testing.T) {
	cases := []struct {
		explicit, parsed, want int
	}{
		{0, 0, prompt.DefaultMaxItems},
		{0, 30, 30},
		{0, 5000, 1000},
		{20, 0, 20},
		{20, 30, 20},
		{30, 20, 20},
		{500, 0, MaxExplicitItems},
		{500, 40, 40},
		{500, 200, MaxExplicitItems},
	}
	for _, tc := range cases {
		if got := reconcileMaxItems(tc.explicit, tc.parsed); got != tc.want {
			t.Errorf("reconcileMaxItems(%d, %d) = %d, want %d", tc.explicit, tc.parsed, got, tc.want)
		}
	}
}
