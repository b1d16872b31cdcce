package logger

import "context"

// Logger is the structured logging boundary used across the tool.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})

	// WithField returns a new logger carrying the field on every entry.
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger carrying all given fields.
	WithFields(fields map[string]interface{}) Logger
}

// nop discards everything. Used as the default when no logger is injected.
type nop struct{}

// NewNop returns a logger that discards all entries.
func NewNop() Logger { return nop{} }

func (nop) Debug(context.Context, string, map[string]interface{}) {}
func (nop) Info(context.Context, string, map[string]interface{})  {}
func (nop) Warn(context.Context, string, map[string]interface{})  {}
func (nop) Error(context.Context, string, map[string]interface{}) {}
func (n nop) WithField(string, interface{}) Logger                { return n }
func (n nop) WithFields(map[string]interface{}) Logger            { return n }
