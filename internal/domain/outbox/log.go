package outbox

import "time"

// Direction distinguishes push attempts from pull refreshes in the log.
type Direction string

const (
	DirectionPush Direction = "push"
	DirectionPull Direction = "pull"
)

// LogStatus is the outcome recorded for one attempt.
type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogFailed  LogStatus = "failed"
)

// LogMessageLimit caps the stored message so a huge remote response
// cannot bloat the audit table.
const LogMessageLimit = 2000

// LogEntry is one immutable row of the sync audit log. Exactly one entry
// is written per push attempt and per pull agent run, independent of the
// queue's own bookkeeping.
type LogEntry struct {
	ID         string
	Operation  string
	EntityType string
	EntityID   int64
	Direction  Direction
	Status     LogStatus
	Message    string
	CreatedAt  time.Time
}

// TruncateMessage trims msg to LogMessageLimit runes.
func TruncateMessage(msg string) string {
	r := []rune(msg)
	if len(r) <= LogMessageLimit {
		return msg
	}
	return string(r[:LogMessageLimit])
}
