package store

import (
	"testing"
	"time"

	"github.com/dtnitsch/scrapekeeper/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := openDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db := &DB{DB: sqlDB, path: ":memory:"}
	if err := db.InitSchema(); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testDocument(url, title string, scrapedAt time.Time) *models.StructuredDocument {
	return &models.StructuredDocument{
		URL:        url,
		Title:      title,
		Paragraphs: []string{"Body text for " + title},
		Method:     models.MethodStatic,
		ScrapedAt:  scrapedAt,
	}
}

func TestInsertAndGetByID(t *testing.T) {
	db := setupTestDB(t)

	doc := testDocument("https://example.com/a", "Page A", time.Now().UTC())
	doc.AIAnalysis = &models.Analysis{
		Summary:  "A summary",
		Provider: models.ProviderFallback,
	}

	id, err := db.Insert(doc)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	rec, err := db.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if rec.URL != doc.URL {
		t.Errorf("Expected URL %q, got %q", doc.URL, rec.URL)
	}
	if rec.Title != "Page A" {
		t.Errorf("Expected title 'Page A', got %q", rec.Title)
	}
	if rec.Document == nil || len(rec.Document.Paragraphs) != 1 {
		t.Error("Expected document content to round-trip")
	}
	if rec.Analysis == nil || rec.Analysis.Summary != "A summary" {
		t.Error("Expected analysis to round-trip")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetByID(999); err == nil {
		t.Error("Expected error for missing record")
	}
}

func TestInsertWithoutAnalysis(t *testing.T) {
	db := setupTestDB(t)

	id, err := db.Insert(testDocument("https://example.com/plain", "Plain", time.Now().UTC()))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	rec, err := db.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.Analysis != nil {
		t.Error("Expected nil analysis for record stored without one")
	}
}

func TestFindOlderThan(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	// Stale: last scraped two hours ago.
	if _, err := db.Insert(testDocument("https://example.com/stale", "Stale", now.Add(-2*time.Hour))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	// Fresh: scraped ten seconds ago.
	if _, err := db.Insert(testDocument("https://example.com/fresh", "Fresh", now.Add(-10*time.Second))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	candidates, err := db.FindOlderThan(now.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("FindOlderThan failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 stale candidate, got %d", len(candidates))
	}
	if candidates[0].URL != "https://example.com/stale" {
		t.Errorf("Expected stale URL, got %q", candidates[0].URL)
	}
}

func TestFindOlderThanUsesLatestScrape(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	// Same URL scraped twice; the recent scrape keeps it out of the
	// candidate set even though an older row exists.
	url := "https://example.com/rescraped"
	if _, err := db.Insert(testDocument(url, "Old", now.Add(-3*time.Hour))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := db.Insert(testDocument(url, "New", now.Add(-5*time.Second))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	candidates, err := db.FindOlderThan(now.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("FindOlderThan failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
}

func TestFindOlderThanOrdersOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	if _, err := db.Insert(testDocument("https://example.com/b", "B", now.Add(-2*time.Hour))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := db.Insert(testDocument("https://example.com/a", "A", now.Add(-4*time.Hour))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	candidates, err := db.FindOlderThan(now.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("FindOlderThan failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].URL != "https://example.com/a" {
		t.Errorf("Expected oldest URL first, got %q", candidates[0].URL)
	}
}

func TestFindOlderThanRespectsLimit(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		url := "https://example.com/page-" + string(rune('a'+i))
		if _, err := db.Insert(testDocument(url, "Page", now.Add(-2*time.Hour))); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	candidates, err := db.FindOlderThan(now.Add(-time.Minute), 3)
	if err != nil {
		t.Fatalf("FindOlderThan failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Errorf("Expected limit of 3 candidates, got %d", len(candidates))
	}
}

func TestUpdateByURL(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	url := "https://example.com/update"

	id, err := db.Insert(testDocument(url, "Before", now.Add(-time.Hour)))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	updated := testDocument(url, "After", now)
	if err := db.UpdateByURL(url, updated); err != nil {
		t.Fatalf("UpdateByURL failed: %v", err)
	}

	rec, err := db.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.Title != "After" {
		t.Errorf("Expected updated title 'After', got %q", rec.Title)
	}
}

func TestUpdateByURLMissing(t *testing.T) {
	db := setupTestDB(t)

	doc := testDocument("https://example.com/ghost", "Ghost", time.Now().UTC())
	if err := db.UpdateByURL(doc.URL, doc); err == nil {
		t.Error("Expected error updating a URL with no records")
	}
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	for i := 0; i < 4; i++ {
		url := "https://example.com/list-" + string(rune('a'+i))
		if _, err := db.Insert(testDocument(url, "Listed", now)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	records, total, err := db.List(2, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Expected total 4, got %d", total)
	}
	if len(records) != 2 {
		t.Errorf("Expected page of 2, got %d", len(records))
	}
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	if _, err := db.Insert(testDocument("https://example.com/go", "Go Tutorial", now)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := db.Insert(testDocument("https://example.com/other", "Cooking", now)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	records, err := db.Search("Tutorial", 20)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Go Tutorial" {
		t.Errorf("Expected single 'Go Tutorial' match, got %d records", len(records))
	}
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	id, err := db.Insert(testDocument("https://example.com/del", "Doomed", time.Now().UTC()))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := db.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := db.GetByID(id); err == nil {
		t.Error("Expected record to be gone after delete")
	}
	if err := db.Delete(id); err == nil {
		t.Error("Expected error deleting a missing record")
	}
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	if _, err := db.Insert(testDocument("https://example.com/s1", "S1", now.Add(-time.Hour))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := db.Insert(testDocument("https://example.com/s1", "S1 again", now)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := db.Insert(testDocument("https://example.com/s2", "S2", now)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalScraped != 3 {
		t.Errorf("Expected 3 total records, got %d", stats.TotalScraped)
	}
	if stats.UniqueURLs != 2 {
		t.Errorf("Expected 2 unique URLs, got %d", stats.UniqueURLs)
	}
	if stats.LastScrapedAt.IsZero() {
		t.Error("Expected non-zero last scrape time")
	}
}
