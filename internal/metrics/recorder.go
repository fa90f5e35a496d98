package metrics

// Recorder receives measurements from the runner and scheduler.
type Recorder interface {
	// RunStarted is called when an action acquires the lock.
	RunStarted(action string)
	// RunFinished is called when an action completes.
	RunFinished(action, status string, seconds float64)
	// RunRefused is called when the lock refuses a concurrent invocation.
	RunRefused()
	// ProfileRefreshed is called after each remote profile fetch attempt.
	ProfileRefreshed(success bool)
}

// Noop is the default Recorder that measures nothing.
type Noop struct{}

// RunStarted implements Recorder.
func (Noop) RunStarted(string) {}

// RunFinished implements Recorder.
func (Noop) RunFinished(string, string, float64) {}

// RunRefused implements Recorder.
func (Noop) RunRefused() {}

// ProfileRefreshed implements Recorder.
func (Noop) ProfileRefreshed(bool) {}
