package pages

import (
	"fmt"
	"regexp"
	"time"
)

// Comment timestamps as the application renders them
const (
	TimestampLayout    = "1/2/2006, 3:04:05 PM"
	TimestampTolerance = 60 * time.Second
)

var timestampPattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}, \d{1,2}:\d{2}:\d{2} [AP]M`)

// commentMatcher matches an element whose text is the comment followed by
// its timestamp
func commentMatcher(comment string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(comment) + `\s*` + timestampPattern.String())
}

// ParseTimestamp extracts the first rendered timestamp from text
func ParseTimestamp(text string, loc *time.Location) (time.Time, error) {
	match := timestampPattern.FindString(text)
	if match == "" {
		return time.Time{}, fmt.Errorf("%w: no timestamp in %q", ErrTimestampMalformed, text)
	}
	if loc == nil {
		loc = time.Local
	}

	ts, err := time.ParseInLocation(TimestampLayout, match, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTimestampMalformed, err)
	}
	return ts, nil
}

// CheckTimestamp parses the timestamp in text and checks it lies within
// TimestampTolerance of submittedAt. Rendered timestamps have second
// precision, so submittedAt is truncated before comparing.
func CheckTimestamp(text string, submittedAt time.Time, loc *time.Location) (time.Time, error) {
	ts, err := ParseTimestamp(text, loc)
	if err != nil {
		return time.Time{}, err
	}

	diff := ts.Sub(submittedAt.Truncate(time.Second))
	if diff < -TimestampTolerance || diff > TimestampTolerance {
		return ts, fmt.Errorf("%w: %s is %s away from submission at %s",
			ErrTimestampOutOfRange, ts.Format(time.RFC3339), diff, submittedAt.Format(time.RFC3339))
	}
	return ts, nil
}
