package recorder

import "BreadthSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunEvent) error                        { return nil }
func (n *NoopRecorder) RecordSignals(_ string, _ []model.BreadthRow) error { return nil }
func (n *NoopRecorder) Close() error                                       { return nil }
