package unlhauae

import "time"

// TimeKind tells how a header encoded its modification time.
type TimeKind uint8

const (
	// TimeAbsent means the header carried no usable time.
	TimeAbsent TimeKind = iota
	// TimeNaive is a wall-clock time with no zone (MS-DOS format).
	TimeNaive
	// TimeZoned is an absolute instant (Unix or Windows format).
	TimeZoned
)

// Timestamp is an entry modification time. Naive times keep their wall-clock
// fields in Time with a UTC location that carries no meaning.
type Timestamp struct {
	Kind TimeKind
	Time time.Time
}

// IsZero reports whether the timestamp is absent.
func (ts Timestamp) IsZero() bool {
	return ts.Kind == TimeAbsent
}

// In returns the timestamp as an instant in loc. Naive times are read as
// wall-clock time in loc.
func (ts Timestamp) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	switch ts.Kind {
	case TimeNaive:
		t := ts.Time
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	case TimeZoned:
		return ts.Time.In(loc)
	default:
		return time.Time{}
	}
}

// dosTime decodes an MS-DOS date/time pair, date in the high 16 bits.
func dosTime(v uint32) Timestamp {
	if v == 0 {
		return Timestamp{}
	}
	date, clock := v>>16, v&0xffff
	year := int(date>>9) + 1980
	month := time.Month((date >> 5) & 0x0f)
	day := int(date & 0x1f)
	if month < time.January || month > time.December || day == 0 {
		return Timestamp{}
	}
	hour := int(clock >> 11)
	minute := int((clock >> 5) & 0x3f)
	sec := int(clock&0x1f) * 2
	return Timestamp{
		Kind: TimeNaive,
		Time: time.Date(year, month, day, hour, minute, sec, 0, time.UTC),
	}
}

func unixTime(v uint32) Timestamp {
	if v == 0 {
		return Timestamp{}
	}
	return Timestamp{Kind: TimeZoned, Time: time.Unix(int64(v), 0).UTC()}
}

// windowsEpochDelta is 1601-01-01 to 1970-01-01 in 100ns ticks.
const windowsEpochDelta = 116444736000000000

func windowsTime(v uint64) Timestamp {
	if v <= windowsEpochDelta {
		return Timestamp{}
	}
	ticks := v - windowsEpochDelta
	sec := int64(ticks / 10000000)
	nsec := int64(ticks%10000000) * 100
	return Timestamp{Kind: TimeZoned, Time: time.Unix(sec, nsec).UTC()}
}
