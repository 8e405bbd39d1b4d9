package domain

import "time"

// ContentItem is one entry of the persisted catalog.
// ReleaseKey is the day the item is due to become today's item; it is empty
// for legacy rows seeded before release dates existed.
type ContentItem struct {
	ID          int64
	Title       string
	Body        string
	ReleaseKey  string
	Fingerprint string
}

// BundledItem is an entry of the catalog shipped with the app, before it has
// been reconciled into the store.
type BundledItem struct {
	Title      string `yaml:"title" validate:"required"`
	Body       string `yaml:"body"`
	ReleaseKey string `yaml:"release_key" validate:"required,datekey"`
}

// CatalogVersion records the last bundled catalog applied to the store.
type CatalogVersion struct {
	Version     int
	LastUpdated time.Time
	ItemCount   int
}

// DayStatus is the log entry for a day the app was opened on.
type DayStatus struct {
	DateKey     string
	ContentID   int64
	Completed   bool
	CompletedAt *time.Time
}

// GeneratedEntry is a saved piece of text produced on request by the
// external text generator.
type GeneratedEntry struct {
	ID        string
	Request   string
	Text      string
	CreatedAt time.Time
}
