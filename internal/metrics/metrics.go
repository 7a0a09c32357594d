// Package metrics defines the minimal metrics surface the importer emits.
//
// The core depends only on Backend; concrete sinks (Datadog, or the Nop
// default) live in subpackages so importing the engine never drags in a
// vendor SDK unless the caller asks for it.
package metrics

// Labels tag a metric sample (e.g. {"kind": "dropped"}).
type Labels map[string]string

// Backend buffers and ships metric samples.
//
// Implementations must be safe for concurrent use; the importer calls
// IncCounter/ObserveHistogram from wherever a run happens to execute.
type Backend interface {
	// IncCounter adds delta to a named counter. Non-positive deltas are ignored.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample of a named distribution. The name
	// carries the unit (seconds, bytes, rows).
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush submits buffered samples to the sink.
	Flush() error

	// Close stops background flushing and performs one final Flush.
	Close() error
}

// Metric names emitted by the importer.
const (
	// ImportRecordsTotal counts records loaded, tagged pattern:<sheet pattern>.
	ImportRecordsTotal = "autoimport.records.total"
	// ImportDroppedTotal counts cells dropped during extraction, tagged
	// pattern:<sheet pattern>.
	ImportDroppedTotal = "autoimport.dropped.total"
	// ImportTablesTotal counts destination tables written, tagged
	// backend:<storage kind>.
	ImportTablesTotal = "autoimport.tables.total"
	// ImportFilesTotal counts workbook files processed.
	ImportFilesTotal = "autoimport.files.total"
	// ImportStageSeconds samples per-stage wall time, tagged
	// stage:read|classify|extract|plan|persist and status:ok|error.
	ImportStageSeconds = "autoimport.stage.seconds"
)

// Nop is the default Backend: it drops everything.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}
func (Nop) Flush() error                             { return nil }
func (Nop) Close() error                             { return nil }
