package status

import "time"

// SyncPhase represents the current phase of a poll cycle
type SyncPhase string

const (
	// SyncPhaseSyncing means a poll is in progress
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means the last poll replaced the local data
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means the last poll failed and will be retried on the next tick
	SyncPhaseFailed SyncPhase = "Failed"

	// SyncPhaseAuthFailed means the account must be re-authenticated; polling has stopped
	SyncPhaseAuthFailed SyncPhase = "AuthFailed"
)

// SyncStatus is the operator-facing state of an account's synchronization.
// It never contains credentials or tokens.
type SyncStatus struct {
	Phase SyncPhase `json:"phase" yaml:"phase"`

	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// LastAttempt is the timestamp of the last poll attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty" yaml:"lastAttempt,omitempty"`

	// AttemptCount is the number of poll attempts since the last success
	AttemptCount int `json:"attemptCount,omitempty" yaml:"attemptCount,omitempty"`

	// LastSyncTime is the timestamp of the last successful poll
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty" yaml:"lastSyncTime,omitempty"`

	// LastSyncHash is the hash of the last successfully polled list graph
	LastSyncHash string `json:"lastSyncHash,omitempty" yaml:"lastSyncHash,omitempty"`

	ListCount int `json:"listCount" yaml:"listCount"`
	ItemCount int `json:"itemCount" yaml:"itemCount"`

	// SyncSchedule is the poll interval currently in effect (e.g. "30s")
	SyncSchedule string `json:"syncSchedule,omitempty" yaml:"syncSchedule,omitempty"`

	// WriterVersion is the version of the binary that last saved this status
	WriterVersion string `json:"writerVersion,omitempty" yaml:"writerVersion,omitempty"`
}

// NeedsReauth reports whether polling stopped because credentials were rejected
func (s *SyncStatus) NeedsReauth() bool {
	return s != nil && s.Phase == SyncPhaseAuthFailed
}
