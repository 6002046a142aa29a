// Package logfields holds the canonical slog attribute keys used across
// chainmerge so that log lines from different packages stay greppable.
package logfields

import (
	"log/slog"
	"time"
)

const (
	KeyChain        = "chain"
	KeyStrategy     = "strategy"
	KeyLegs         = "legs"
	KeySteps        = "steps"
	KeyPlaceholders = "placeholders"
	KeyStatus       = "status"
	KeyPath         = "path"
	KeyAddr         = "addr"
	KeyTool         = "tool"
	KeyDurationMS   = "duration_ms"
	KeyError        = "error"
)

func Chain(name string) slog.Attr  { return slog.String(KeyChain, name) }
func Strategy(s string) slog.Attr  { return slog.String(KeyStrategy, s) }
func Legs(n int) slog.Attr         { return slog.Int(KeyLegs, n) }
func Steps(n int) slog.Attr        { return slog.Int(KeySteps, n) }
func Placeholders(n int) slog.Attr { return slog.Int(KeyPlaceholders, n) }
func Status(s string) slog.Attr    { return slog.String(KeyStatus, s) }
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func Addr(a string) slog.Attr      { return slog.String(KeyAddr, a) }
func Tool(name string) slog.Attr   { return slog.String(KeyTool, name) }

// Duration reports d in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

// Error renders err as a string attribute. A nil error renders empty.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
