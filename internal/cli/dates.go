package cli

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseWhen reads an RFC3339 timestamp, a YYYY-MM-DD date (midnight UTC)
// or an English phrase such as "tomorrow" or "next friday 9am" relative
// to now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	r, err := dateParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("parse time %q: not a date or time", s)
	}
	return r.Time.UTC(), nil
}
