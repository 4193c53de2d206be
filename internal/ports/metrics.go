package ports

type RegistryMetrics interface {
	SessionCreated()
	SessionClosed()
	RequestForwarded(method string)
	RequestResolved(matched bool)
	PendingRequests(count int)
}

type LauncherMetrics interface {
	LaunchAttempt(outcome string)
}

const (
	LaunchOutcomeOK        = "ok"
	LaunchOutcomeInvalid   = "invalid"
	LaunchOutcomeFailed    = "failed"
	LaunchOutcomeThrottled = "throttled"
)

type NopMetrics struct{}

func (NopMetrics) SessionCreated()         {}
func (NopMetrics) SessionClosed()          {}
func (NopMetrics) RequestForwarded(string) {}
func (NopMetrics) RequestResolved(bool)    {}
func (NopMetrics) PendingRequests(int)     {}
func (NopMetrics) LaunchAttempt(string)    {}
