package models

// SyncResult reports the outcome of one status synchronization pass.
// Errors holds one entry per agent whose write-back failed; a partial
// failure never aborts the batch.
type SyncResult struct {
	AgentsUpdated        int      `json:"agents_updated"`
	InconsistenciesFound int      `json:"inconsistencies_found"`
	InconsistenciesFixed int      `json:"inconsistencies_fixed"`
	Errors               []string `json:"errors,omitempty"`
}
