package attendance

import "time"

// Record is a single photo check-in.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ImageURL  *string   `json:"profileImage,omitempty"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Location  string    `json:"location"`
	Mark      int       `json:"mark"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the per-record view returned by the listing endpoint.
type Summary struct {
	Image *string `json:"image"`
	Day   string  `json:"day"`
	Time  string  `json:"time"`
	Mark  int     `json:"mark"`
}

// Summarize maps records to their listing view, deriving the weekday from the
// stored capture date.
func Summarize(records []Record) []Summary {
	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, Summary{
			Image: rec.ImageURL,
			Day:   Weekday(rec.Date),
			Time:  rec.Time,
			Mark:  rec.Mark,
		})
	}
	return out
}
