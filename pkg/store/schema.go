package store

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Scraped documents: one row per acquisition. Re-acquisitions of the
-- same URL update the newest row; fresh scrapes insert a new one.
CREATE TABLE IF NOT EXISTS scraped_data (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL,
    title TEXT,
    content TEXT NOT NULL,        -- StructuredDocument JSON
    ai_analysis TEXT,             -- Analysis JSON, NULL when not analyzed
    method TEXT NOT NULL DEFAULT 'static',
    scraped_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scraped_url ON scraped_data(url);
CREATE INDEX IF NOT EXISTS idx_scraped_at ON scraped_data(scraped_at);
CREATE INDEX IF NOT EXISTS idx_scraped_created ON scraped_data(created_at DESC);
`
