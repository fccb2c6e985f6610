package ports

// Webhook outcomes
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// MetricsRecorder receives the business counters exported on /metrics
type MetricsRecorder interface {
	WebhookReceived(topic, outcome string)
	InstallCompleted(created bool)
	InstallFailed()
	UpstreamFailure(operation string)
}
