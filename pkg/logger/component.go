package logger

import (
	"fmt"
	"strings"
)

// ComponentLogger tags every message with a component name and renders
// trailing key/value pairs as k=v.
type ComponentLogger struct {
	component string
}

// WithComponent returns a logger scoped to a component
func WithComponent(name string) *ComponentLogger {
	return &ComponentLogger{component: name}
}

func (c *ComponentLogger) format(msg string, kv []interface{}) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(c.component)
	b.WriteString("] ")
	b.WriteString(msg)

	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	return b.String()
}

func (c *ComponentLogger) Debug(msg string, kv ...interface{}) {
	Debug("%s", c.format(msg, kv))
}

func (c *ComponentLogger) Info(msg string, kv ...interface{}) {
	Info("%s", c.format(msg, kv))
}

func (c *ComponentLogger) Warn(msg string, kv ...interface{}) {
	Warn("%s", c.format(msg, kv))
}

func (c *ComponentLogger) Error(msg string, kv ...interface{}) {
	Error("%s", c.format(msg, kv))
}
