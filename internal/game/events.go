package game

// Severity classifies events for the presentation layer.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Event is a side-channel signal (a toast, not a state field) produced by
// engine transitions such as an equipment failure.
type Event struct {
	Message  string
	Severity Severity
}

// Notifier receives events. Implementations are UI sinks or loggers.
type Notifier interface {
	Emit(message string, severity Severity)
}
