package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dtnitsch/scrapekeeper/models"
)

// Record is one stored acquisition of a URL.
type Record struct {
	ID        int64
	URL       string
	Title     string
	Document  *models.StructuredDocument
	Analysis  *models.Analysis
	Method    string
	ScrapedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats summarizes the stored corpus.
type Stats struct {
	TotalScraped  int64
	UniqueURLs    int64
	LastScrapedAt time.Time
}

// Insert stores a new acquisition row for the document's URL.
func (db *DB) Insert(doc *models.StructuredDocument) (int64, error) {
	content, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal document: %w", err)
	}

	analysis, err := marshalAnalysis(doc.AIAnalysis)
	if err != nil {
		return 0, err
	}

	result, err := db.Exec(`
		INSERT INTO scraped_data (url, title, content, ai_analysis, method, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.URL, doc.Title, string(content), analysis, doc.Method, doc.ScrapedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	return result.LastInsertId()
}

// UpdateByURL replaces the newest record for the URL with a fresh
// acquisition. Older records for the same URL stay untouched.
func (db *DB) UpdateByURL(url string, doc *models.StructuredDocument) error {
	content, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	analysis, err := marshalAnalysis(doc.AIAnalysis)
	if err != nil {
		return err
	}

	result, err := db.Exec(`
		UPDATE scraped_data
		SET title = ?, content = ?, ai_analysis = ?, method = ?, scraped_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = (
			SELECT id FROM scraped_data
			WHERE url = ?
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)`,
		doc.Title, string(content), analysis, doc.Method, doc.ScrapedAt.UTC(), url,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no record found for URL: %s", url)
	}

	return nil
}

// FindOlderThan returns up to limit URLs whose latest acquisition is
// older than the cutoff, oldest first. A URL re-scraped after the
// cutoff is not a candidate even if it has older rows.
func (db *DB) FindOlderThan(cutoff time.Time, limit int) ([]models.RefreshCandidate, error) {
	// Join back to the base table so last_scraped_at keeps its declared
	// TIMESTAMP type and scans as time.Time.
	rows, err := db.Query(`
		SELECT DISTINCT s.url, s.scraped_at AS last_scraped_at
		FROM scraped_data s
		JOIN (
			SELECT url, MAX(scraped_at) AS latest
			FROM scraped_data
			GROUP BY url
		) newest ON s.url = newest.url AND s.scraped_at = newest.latest
		WHERE s.scraped_at < ?
		ORDER BY s.scraped_at ASC
		LIMIT ?`,
		cutoff.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale documents: %w", err)
	}
	defer rows.Close()

	var candidates []models.RefreshCandidate
	for rows.Next() {
		var c models.RefreshCandidate
		if err := rows.Scan(&c.URL, &c.LastScrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// GetByID retrieves a single record.
func (db *DB) GetByID(id int64) (*Record, error) {
	row := db.QueryRow(`
		SELECT id, url, title, content, ai_analysis, method, scraped_at, created_at, updated_at
		FROM scraped_data
		WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %d not found", id)
	}
	return rec, err
}

// GetByURL retrieves all records for a URL, newest first.
func (db *DB) GetByURL(url string) ([]*Record, error) {
	rows, err := db.Query(`
		SELECT id, url, title, content, ai_analysis, method, scraped_at, created_at, updated_at
		FROM scraped_data
		WHERE url = ?
		ORDER BY created_at DESC, id DESC`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query by URL: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// List returns a page of records, newest first, plus the total count.
func (db *DB) List(limit, offset int) ([]*Record, int64, error) {
	var total int64
	if err := db.QueryRow("SELECT COUNT(*) FROM scraped_data").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	rows, err := db.Query(`
		SELECT id, url, title, content, ai_analysis, method, scraped_at, created_at, updated_at
		FROM scraped_data
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	return records, total, err
}

// Search matches the query against titles and URLs.
func (db *DB) Search(query string, limit int) ([]*Record, error) {
	pattern := "%" + query + "%"
	rows, err := db.Query(`
		SELECT id, url, title, content, ai_analysis, method, scraped_at, created_at, updated_at
		FROM scraped_data
		WHERE title LIKE ? OR url LIKE ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Delete removes a record by ID.
func (db *DB) Delete(id int64) error {
	result, err := db.Exec("DELETE FROM scraped_data WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %d not found", id)
	}

	return nil
}

// GetStats summarizes the stored corpus.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	err := db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT url) FROM scraped_data").
		Scan(&stats.TotalScraped, &stats.UniqueURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	if stats.TotalScraped > 0 {
		err = db.QueryRow("SELECT scraped_at FROM scraped_data ORDER BY scraped_at DESC LIMIT 1").
			Scan(&stats.LastScrapedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to read last scrape time: %w", err)
		}
	}

	return stats, nil
}

func marshalAnalysis(analysis *models.Analysis) (sql.NullString, error) {
	if analysis == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec := &Record{}
	var content string
	var analysis sql.NullString

	err := row.Scan(&rec.ID, &rec.URL, &rec.Title, &content, &analysis,
		&rec.Method, &rec.ScrapedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Document = &models.StructuredDocument{}
	if err := json.Unmarshal([]byte(content), rec.Document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %d: %w", rec.ID, err)
	}

	if analysis.Valid {
		rec.Analysis = &models.Analysis{}
		if err := json.Unmarshal([]byte(analysis.String), rec.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis %d: %w", rec.ID, err)
		}
	}

	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
