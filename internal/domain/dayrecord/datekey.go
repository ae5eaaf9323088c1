package dayrecord

import "time"

// DateKey formats t as a calendar-date key in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// AddDays shifts a date key by n calendar days.
// PRE: key is a valid date key
func AddDays(key string, n int) (string, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// DaysBetween lists every key from..to inclusive. Returns nil when to < from.
func DaysBetween(from, to string) ([]string, error) {
	start, err := ParseDateKey(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDateKey(to)
	if err != nil {
		return nil, err
	}
	var keys []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(DateLayout))
	}
	return keys, nil
}
