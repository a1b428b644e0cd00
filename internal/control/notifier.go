package control

// Notifier is the outward notification interface consumed by the
// external collaborator (daemon, CLI). Notifications are advisory;
// observers cannot mutate engine state through them.
type Notifier interface {
	// Status carries free-text session status ("Recording Started",
	// warnings, errors).
	Status(text string)
	// Progress carries the 1-based index of a completed playback
	// iteration.
	Progress(iteration int)
	// Finished signals that a capture or replay session terminated
	// and the controller returned to idle.
	Finished()
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Status(string) {}
func (NopNotifier) Progress(int)  {}
func (NopNotifier) Finished()     {}

// MultiNotifier fans notifications out to several notifiers in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Status(text string) {
	for _, n := range m {
		n.Status(text)
	}
}

func (m MultiNotifier) Progress(iteration int) {
	for _, n := range m {
		n.Progress(iteration)
	}
}

func (m MultiNotifier) Finished() {
	for _, n := range m {
		n.Finished()
	}
}
