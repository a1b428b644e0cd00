package macro

import "time"

// Log is the ordered sequence of actions from one recording session.
// It is append-only while the capture engine owns it and must be treated
// as immutable once committed to the controller; replay only reads it.
type Log struct {
	actions []Action
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an action to the end of the log.
func (l *Log) Append(a Action) {
	l.actions = append(l.actions, a)
}

// Len returns the number of recorded actions.
func (l *Log) Len() int {
	return len(l.actions)
}

// Actions returns the recorded sequence. Callers must not modify the
// returned slice.
func (l *Log) Actions() []Action {
	return l.actions
}

// Duration returns the sum of all deltas, which equals the wall-clock
// span of the recording session within timer resolution.
func (l *Log) Duration() time.Duration {
	var total time.Duration
	for _, a := range l.actions {
		total += a.Delta
	}
	return total
}
