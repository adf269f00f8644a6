package status

// StartMsg shows the typing indicator
type StartMsg struct {
	Text string
}

// StopMsg hides the typing indicator
type StopMsg struct{}
