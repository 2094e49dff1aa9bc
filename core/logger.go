package core

// Logger is any service that can report application events.
// args are free-form: errors, map[string]interface{} extras and at most one Session for the person data.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
