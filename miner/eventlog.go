package miner

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event levels shown on the dashboard.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarn    = "warn"
	LevelError   = "error"
)

// SystemAccount is the sentinel account name for scheduler-level events.
const SystemAccount = "SYSTEM"

// DefaultLogCapacity is the number of entries kept for the dashboard.
const DefaultLogCapacity = 200

// LogEntry is one human-readable event.
type LogEntry struct {
	Time    string `json:"time"`
	Account string `json:"account"`
	Message string `json:"msg"`
	Level   string `json:"level"`
}

// EventLog is a fixed-capacity ring of events, written by many workers and
// read by the reporting surface. Oldest entries are silently dropped.
// Every entry is also mirrored to the process logger.
type EventLog struct {
	mu    sync.Mutex
	buf   []LogEntry
	next  int
	count int
	log   *logrus.Logger

	now func() time.Time
}

// NewEventLog creates a log holding at most capacity entries; non-positive
// capacity falls back to DefaultLogCapacity.
func NewEventLog(capacity int, log *logrus.Logger) *EventLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EventLog{
		buf: make([]LogEntry, capacity),
		log: log,
		now: time.Now,
	}
}

// Add appends an event for the given account.
func (l *EventLog) Add(account, msg, level string) {
	entry := LogEntry{
		Time:    l.now().Format("15:04:05"),
		Account: account,
		Message: msg,
		Level:   level,
	}

	l.mu.Lock()
	l.buf[l.next] = entry
	l.next = (l.next + 1) % len(l.buf)
	if l.count < len(l.buf) {
		l.count++
	}
	l.mu.Unlock()

	fields := logrus.Fields{"account": account}
	switch level {
	case LevelError:
		l.log.WithFields(fields).Error(msg)
	case LevelWarn:
		l.log.WithFields(fields).Warn(msg)
	default:
		l.log.WithFields(fields).Info(msg)
	}
}

// Entries returns the stored events, newest first.
func (l *EventLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogEntry, 0, l.count)
	idx := l.next
	for i := 0; i < l.count; i++ {
		idx--
		if idx < 0 {
			idx = len(l.buf) - 1
		}
		out = append(out, l.buf[idx])
	}
	return out
}
