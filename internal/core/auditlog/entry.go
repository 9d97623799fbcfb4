package auditlog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxURLLength is the number of characters of the source URL kept per entry
const MaxURLLength = 100

const lineTimeFormat = "2006-01-02 15:04:05"

// Entry is one audit record: an inbound resolution attempt
type Entry struct {
	ID       string    `json:"id,omitempty"`
	Time     time.Time `json:"time"`
	Platform string    `json:"platform"`
	URL      string    `json:"url"`
}

// NewEntry stamps a record with a fresh id and the current time, truncating the URL
func NewEntry(platform, rawURL string) Entry {
	return Entry{
		ID:       uuid.NewString(),
		Time:     time.Now(),
		Platform: platform,
		URL:      truncate(rawURL, MaxURLLength),
	}
}

// Line renders the entry in the plain-text log format
func (e Entry) Line() string {
	return e.Time.Format(lineTimeFormat) + " | Platform: " + e.Platform + " | URL: " + e.URL
}

// parseLine is the inverse of Line; the id is not part of the text format
func parseLine(line string) (Entry, bool) {
	parts := strings.SplitN(line, " | ", 3)
	if len(parts) != 3 {
		return Entry{}, false
	}
	t, err := time.ParseInLocation(lineTimeFormat, parts[0], time.Local)
	if err != nil {
		return Entry{}, false
	}
	platform, ok := strings.CutPrefix(parts[1], "Platform: ")
	if !ok {
		return Entry{}, false
	}
	u, ok := strings.CutPrefix(parts[2], "URL: ")
	if !ok {
		return Entry{}, false
	}
	return Entry{Time: t, Platform: platform, URL: u}, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
