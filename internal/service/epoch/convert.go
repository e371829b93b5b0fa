package epoch

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const (
	MaxDigits = 20
	// MaxSafeMillis is the largest millisecond value a browser Date can
	// represent exactly (2^53 - 1).
	MaxSafeMillis = 1<<53 - 1

	layoutUTC   = "Mon, 02 Jan 2006 15:04:05 GMT"
	layoutISO   = "2006-01-02T15:04:05.000Z07:00"
	layoutLocal = "1/2/2006, 3:04:05 PM"
)

var (
	ErrTimestampRequired = errors.New("epoch timestamp is required")
	ErrTooLong           = errors.New("epoch timestamp is too long, maximum allowed length is 20 digits")
	ErrNotNumeric        = errors.New("epoch timestamp must contain only numbers (0-9)")
	ErrOutOfRange        = errors.New("timestamp value is outside safe processing range")
	ErrDateRequired      = errors.New("date is required")
	ErrTimeRequired      = errors.New("time is required")
	ErrInvalidDateTime   = errors.New("invalid date/time format")
	ErrUnknownTimezone   = errors.New("unknown timezone")
)

// ToHuman converts an epoch value of any detected unit to calendar forms.
// Local renderings use loc.
func ToHuman(input string, loc *time.Location) (*model.EpochConversion, error) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return nil, ErrTimestampRequired
	case len(input) > MaxDigits:
		return nil, ErrTooLong
	case strings.Trim(input, "0123456789") != "":
		return nil, ErrNotNumeric
	}

	detected := Detect(input)
	v, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return nil, ErrOutOfRange
	}

	t, err := toTime(v, detected.Format)
	if err != nil {
		return nil, err
	}

	r := render(t, loc)
	return &model.EpochConversion{
		Detected:  detected,
		LocalTime: r.local,
		UTCTime:   r.utc,
		ISOTime:   r.iso,
		Unix:      r.unix,
		JS:        r.js,
		Micro:     r.micro,
		Nano:      r.nano,
	}, nil
}

func toTime(v uint64, format string) (time.Time, error) {
	var t time.Time
	switch format {
	case FormatMilliseconds:
		if v > MaxSafeMillis {
			return t, ErrOutOfRange
		}
		t = time.UnixMilli(int64(v))
	case FormatMicroseconds:
		if v/1_000 > MaxSafeMillis {
			return t, ErrOutOfRange
		}
		t = time.UnixMicro(int64(v))
	case FormatNanoseconds:
		if v > 1<<63-1 {
			return t, ErrOutOfRange
		}
		t = time.Unix(0, int64(v))
	default:
		if v > MaxSafeMillis/1_000 {
			return t, ErrOutOfRange
		}
		t = time.Unix(int64(v), 0)
	}
	return t, nil
}

type rendering struct {
	local, utc, iso string
	unix, js, micro int64
	nano            string
}

func render(t time.Time, loc *time.Location) rendering {
	if loc == nil {
		loc = time.Local
	}
	return rendering{
		local: t.In(loc).Format(layoutLocal),
		utc:   t.UTC().Format(layoutUTC),
		iso:   t.UTC().Format(layoutISO),
		unix:  t.Unix(),
		js:    t.UnixMilli(),
		micro: t.UnixMicro(),
		nano:  nanos(t),
	}
}

// nanos renders t as nanoseconds since the epoch without overflowing
// int64 for dates past 2262.
func nanos(t time.Time) string {
	n := new(big.Int).Mul(big.NewInt(t.Unix()), big.NewInt(int64(time.Second)))
	n.Add(n, big.NewInt(int64(t.Nanosecond())))
	return n.String()
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// FromHuman converts a calendar date and wall-clock time to epoch values.
// zone is "utc", "local" (or empty) for loc, or an IANA zone name. The
// wall-clock fields are interpreted directly in the chosen zone.
func FromHuman(date, clock, zone string, loc *time.Location) (*model.HumanConversion, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" {
		return nil, ErrDateRequired
	}
	if clock == "" {
		return nil, ErrTimeRequired
	}

	in, err := zoneLocation(zone, loc)
	if err != nil {
		return nil, err
	}

	t, err := parseDateTime(date, clock, in)
	if err != nil {
		return nil, err
	}
	if ms := t.UnixMilli(); ms < -MaxSafeMillis || ms > MaxSafeMillis {
		return nil, ErrOutOfRange
	}

	r := render(t, in)
	return &model.HumanConversion{
		Timezone: in.String(),
		ISOTime:  r.iso,
		UTCTime:  r.utc,
		Unix:     r.unix,
		JS:       r.js,
		Micro:    r.micro,
		Nano:     r.nano,
	}, nil
}

func zoneLocation(zone string, loc *time.Location) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(zone)) {
	case "utc":
		return time.UTC, nil
	case "", "local":
		if loc == nil {
			return time.Local, nil
		}
		return loc, nil
	}
	l, err := time.LoadLocation(zone)
	if err != nil {
		return nil, ErrUnknownTimezone
	}
	return l, nil
}

func parseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	for _, s := range []string{
		date + "T" + clock,
		date + " " + clock,
		date + "T" + clock + ":00",
		date + " " + clock + ":00",
	} {
		for _, layout := range dateTimeLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, nil
			}
		}
	}

	// Field-by-field: unparseable time components count as zero and
	// out-of-range ones roll over.
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return time.Time{}, ErrInvalidDateTime
	}
	field := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0
		}
		return n
	}
	return time.Date(d.Year(), d.Month(), d.Day(), field(0), field(1), field(2), 0, loc), nil
}

// Now describes t in the forms returned by the converters.
func Now(t time.Time) model.CurrentTime {
	return model.CurrentTime{
		Unix:    t.Unix(),
		JS:      t.UnixMilli(),
		ISOTime: t.UTC().Format(layoutISO),
		UTCTime: t.UTC().Format(layoutUTC),
	}
}
