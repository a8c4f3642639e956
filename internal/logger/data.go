package logger

import (
	"log"
	"sync"
)

// Logger provides leveled logging tagged by component. The zero value
// writes through the standard log package at LevelDebug.
type Logger struct {
	MinLevel LogLevel
	out      *log.Logger
	mu       sync.Mutex
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)
