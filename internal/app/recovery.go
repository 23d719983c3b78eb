package app

import "dcimsync/internal/domain"

// RecoveryContext carries what a cycle must undo if it fails. It is created
// per cycle and filled in before anything on the camera side changes.
type RecoveryContext struct {
	CycleID string
	Source  domain.Source

	// PriorConnection is the network connection that was active before the
	// cycle joined the camera's Wi-Fi. Empty when nothing was captured.
	PriorConnection string
	restored        bool
}

func (rc *RecoveryContext) NeedsRestore() bool {
	return rc.PriorConnection != "" && !rc.restored
}

func (rc *RecoveryContext) markRestored() {
	rc.restored = true
}
