package core

// Logger is implemented by the logging services.
// args may carry an error, a map[string]interface{} of extras and one Actor.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor identifies the authenticated admin on whose behalf something was logged.
type Actor struct {
	ID    string
	Email string
}
