package ports

// Logger is the structured logger handed to services. Adapters live in
// pkg/logging so the service layer never imports a logging library.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
}

// Field is a single structured logging key/value pair
type Field struct {
	Key   string
	Value any
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Any creates a field from an arbitrary value
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field under the conventional "error" key
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
