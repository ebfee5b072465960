// Package jobs tracks background categorize and sync runs, one at a time per kind.
package jobs

import (
	"context"
	"time"
)

type Kind string

const (
	KindCategorize Kind = "categorize"
	KindSync       Kind = "sync"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Progress is the running tally an engine reports.
type Progress struct {
	Total       int `json:"total"`
	Processed   int `json:"processed"`
	Categorized int `json:"categorized"`
	Synced      int `json:"synced"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// Job is a snapshot of one tracker slot.
type Job struct {
	ID         string     `json:"id,omitempty"`
	Kind       Kind       `json:"kind"`
	Status     Status     `json:"status"`
	Limit      int        `json:"limit,omitempty"`
	Progress
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Reporter receives progress from a running engine.
type Reporter interface {
	Report(p Progress)
}

// Engine is the work a tracker runs. The returned Progress is the final tally.
type Engine interface {
	Run(ctx context.Context, limit int, reporter Reporter) (Progress, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, limit int, reporter Reporter) (Progress, error)

func (f EngineFunc) Run(ctx context.Context, limit int, reporter Reporter) (Progress, error) {
	return f(ctx, limit, reporter)
}
