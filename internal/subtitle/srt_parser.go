package subtitle

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const timecodeSeparator = " --> "

var (
	blockSeparator = regexp.MustCompile(`\n{2,}`)
	timestampRegex = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2}),(\d{1,3})$`)
)

var (
	errTimestampFormat = errors.New("expected H:MM:SS,mmm")
	errTimestampRange  = errors.New("hours out of range")
)

// largest hour count whose timestamp still fits in an int64 of milliseconds,
// leaving room for 99:99,999 of minutes, seconds and millis
const maxHours = math.MaxInt64/3600000 - 2

// Parse converts SRT content into records, one per block, in file order.
//
// Blocks are separated by two or more newlines. The first malformed block
// aborts the parse with a *ParseError; nothing is skipped or repaired.
func Parse(text string) ([]Record, error) {
	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if normalized == "" {
		return []Record{}, nil
	}

	blocks := blockSeparator.Split(normalized, -1)
	records := make([]Record, 0, len(blocks))

	for i, block := range blocks {
		record, err := parseBlock(i+1, block)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func parseBlock(blockNum int, block string) (Record, error) {
	lines := strings.Split(block, "\n")

	id, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Record{}, &ParseError{
			Block: blockNum,
			Line:  1,
			Msg:   fmt.Sprintf("invalid id %q", lines[0]),
			Err:   err,
		}
	}

	if len(lines) < 2 {
		return Record{}, &ParseError{
			Block: blockNum,
			Line:  2,
			Msg:   "missing timecode line",
		}
	}

	timecodes := strings.Split(lines[1], timecodeSeparator)
	if len(timecodes) < 2 {
		return Record{}, &ParseError{
			Block: blockNum,
			Line:  2,
			Msg:   fmt.Sprintf("missing %q in timecode line %q", timecodeSeparator, lines[1]),
		}
	}

	start := strings.TrimSpace(timecodes[0])
	end := strings.TrimSpace(timecodes[1])
	for _, ts := range []string{start, end} {
		if _, err := ToMillis(ts); err != nil {
			return Record{}, &ParseError{
				Block: blockNum,
				Line:  2,
				Msg:   "invalid timestamp",
				Err:   err,
			}
		}
	}

	text := strings.TrimSpace(strings.Join(lines[2:], " "))
	text = strings.ReplaceAll(text, "\n", " ")

	return Record{
		ID:        id,
		StartTime: start,
		EndTime:   end,
		Text:      text,
	}, nil
}

// ToMillis converts an SRT timestamp to milliseconds. Components are not range
// checked, so "00:75:00,000" is 75 minutes.
func ToMillis(timestamp string) (int64, error) {
	matches := timestampRegex.FindStringSubmatch(strings.TrimSpace(timestamp))
	if matches == nil {
		return 0, fmt.Errorf("%q: %w", timestamp, errTimestampFormat)
	}

	var parts [4]int64
	for i := range parts {
		v, err := strconv.ParseInt(matches[i+1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", timestamp, err)
		}
		parts[i] = v
	}
	if parts[0] > maxHours {
		return 0, fmt.Errorf("%q: %w", timestamp, errTimestampRange)
	}

	return parts[0]*3600000 +
		parts[1]*60000 +
		parts[2]*1000 +
		parts[3], nil
}

// FormatMillis renders milliseconds as HH:MM:SS,mmm.
func FormatMillis(ms int64) string {
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	hours := ms / 3600000
	minutes := ms / 60000 % 60
	seconds := ms / 1000 % 60
	millis := ms % 1000

	return fmt.Sprintf("%s%02d:%02d:%02d,%03d", sign, hours, minutes, seconds, millis)
}
