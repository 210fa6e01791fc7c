package subtitle

import (
	"fmt"
)

// represents single parsed subtitle block
type Record struct {
	// sequence number as declared in the file, not necessarily contiguous
	ID        int
	StartTime string
	EndTime   string
	// single line, source line breaks become spaces
	Text string
}

// start timestamp in milliseconds
func (r Record) StartMillis() (int64, error) {
	return ToMillis(r.StartTime)
}

// end timestamp in milliseconds
func (r Record) EndMillis() (int64, error) {
	return ToMillis(r.EndTime)
}

// ParseError reports a malformed block. Parsing stops at the first one.
type ParseError struct {
	Block int // 1-based block number
	Line  int // 1-based line within the block
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("block %d, line %d: %s: %v", e.Block, e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("block %d, line %d: %s", e.Block, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
