package indexer

// ProgressReporter receives indexing progress. Implementations can display
// progress bars, log messages, or stay silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called with the number of headers found.
	OnDiscoveryComplete(headers int)

	// OnFileProcessingStart is called before headers are extracted and stored.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each header is stored or skipped.
	OnFileProcessed(fileName string)

	// OnComplete is called when a run finishes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter discards all progress.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryStart()         {}
func (NoOpProgressReporter) OnDiscoveryComplete(int)   {}
func (NoOpProgressReporter) OnFileProcessingStart(int) {}
func (NoOpProgressReporter) OnFileProcessed(string)    {}
func (NoOpProgressReporter) OnComplete(*Stats)         {}
