//go:generate mockgen -source=contracts.go -destination=events_mocks_test.go -package=events

package events

// Recorder abstracts the metrics sink order lifecycle events are counted
// into.
type Recorder interface {
	IncOrderEvent(action string)
}
