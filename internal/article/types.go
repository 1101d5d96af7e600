// Package article defines core types shared across subsystems.
package article

import "time"

// TaskStatus represents the lifecycle state of a per-URL scrape task.
type TaskStatus string

// Task status values reported by the coordinator.
const (
	TaskPending     TaskStatus = "pending"
	TaskSkipped     TaskStatus = "skipped"
	TaskFetching    TaskStatus = "fetching"
	TaskExtracting  TaskStatus = "extracting"
	TaskNormalizing TaskStatus = "normalizing"
	TaskPersisting  TaskStatus = "persisting"
	TaskSucceeded   TaskStatus = "succeeded"
	TaskFailed      TaskStatus = "failed"
)

// StructuredMeta carries authorship and publication fields taken from an
// embedded LD+JSON block of type NewsArticle. Dates are kept as the source
// strings; the export layer parses them when it needs a specific format.
type StructuredMeta struct {
	Type          string `json:"type"`
	AuthorName    string `json:"author_name"`
	PublisherName string `json:"publisher_name"`
	PublisherURL  string `json:"publisher_url"`
	DateCreated   string `json:"date_created"`
	DatePublished string `json:"date_published"`
	DateModified  string `json:"date_modified"`
}

// Record is the persisted representation of one scraped article, keyed by
// URL. Writes are full-record replacement: the store upserts the whole row
// on conflict, never a partial patch.
type Record struct {
	URL             string          `json:"url"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	MetaDescription string          `json:"meta_description"`
	MetaKeywords    []string        `json:"meta_keywords"`
	MetaTags        []string        `json:"meta_tag"`
	Structured      *StructuredMeta `json:"structured,omitempty"`
	Content         string          `json:"content"`
}

// Outcome is the terminal result of one URL's pipeline run.
type Outcome struct {
	URL      string        `json:"url"`
	Status   TaskStatus    `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Summary aggregates a full coordinator run.
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
}
