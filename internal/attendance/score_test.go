package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreBands(t *testing.T) {
	cases := []struct {
		clock string
		want  int
	}{
		{"09:44 AM", 20},
		{"09:45 AM", 20},
		{"09:50 AM", 10},
		{"09:59 AM", 10},
		{"10:00 AM", 0},
		{"08:00 AM", 20},
		{"00:15 AM", 20},
		{"12:01 PM", 0},
		{"13:20 PM", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Score(tc.clock), "clock %s", tc.clock)
	}
}

func TestScoreMonotonicNonIncreasing(t *testing.T) {
	prev := 20
	for _, clock := range []string{"07:30 AM", "09:45 AM", "09:46 AM", "09:59 AM", "10:00 AM", "13:20 PM"} {
		got := Score(clock)
		assert.LessOrEqual(t, got, prev, "clock %s", clock)
		prev = got
	}
}

func TestCapture(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Skip("tzdata not available")
	}

	morning := time.Date(2023, time.June, 2, 9, 5, 0, 0, lagos)
	date, clock := Capture(morning)
	assert.Equal(t, "Fri, 02 Jun 2023", date)
	assert.Equal(t, "09:05 AM", clock)

	// The afternoon clock keeps the 24-hour figure with a PM suffix.
	afternoon := time.Date(2023, time.June, 2, 13, 20, 0, 0, lagos)
	_, clock = Capture(afternoon)
	assert.Equal(t, "13:20 PM", clock)

	noon := time.Date(2023, time.June, 2, 12, 0, 0, 0, lagos)
	_, clock = Capture(noon)
	assert.Equal(t, "12:00 PM", clock)
}

func TestCaptureZeroPadding(t *testing.T) {
	early := time.Date(2023, time.June, 5, 8, 3, 0, 0, time.UTC)
	date, clock := Capture(early)
	assert.Equal(t, "Mon, 05 Jun 2023", date)
	assert.Equal(t, "08:03 AM", clock)
	// Padding is what keeps the lexicographic score bands coherent.
	assert.Equal(t, 20, Score(clock))
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, "Fri", Weekday("Fri, 02 Jun 2023"))
	assert.Equal(t, "Mon", Weekday("Mon, 05 Jun 2023"))
	assert.Equal(t, "", Weekday("not a date"))
}

func TestSummarize(t *testing.T) {
	url := "https://res.cloudinary.com/demo/image/upload/v1/sample.jpg"
	records := []Record{
		{ImageURL: &url, Date: "Fri, 02 Jun 2023", Time: "09:30 AM", Mark: 20},
		{ImageURL: nil, Date: "Mon, 05 Jun 2023", Time: "10:15 AM", Mark: 0},
	}

	got := Summarize(records)
	assert.Len(t, got, 2)
	assert.Equal(t, &url, got[0].Image)
	assert.Equal(t, "Fri", got[0].Day)
	assert.Equal(t, "09:30 AM", got[0].Time)
	assert.Equal(t, 20, got[0].Mark)
	assert.Nil(t, got[1].Image)
	assert.Equal(t, "Mon", got[1].Day)
}
