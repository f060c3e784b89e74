package models

// Checkpoint is the opaque pull cursor handed out by the sync server. By
// convention it is an RFC3339 timestamp plus a row id, but the client never
// interprets it beyond displaying the timestamp; it is stored and echoed back
// verbatim.
type Checkpoint struct {
	UpdatedAt string `json:"updatedAt"`
	ID        string `json:"id"`
}

// SyncResult summarizes one completed sync cycle.
type SyncResult struct {
	Pushed    int   `json:"pushed"`
	Pulled    int   `json:"pulled"`
	Conflicts int   `json:"conflicts"`
	SyncedAt  int64 `json:"syncedAt"`
}

// SyncStatus describes the engine's standing without performing a cycle.
type SyncStatus struct {
	Configured     bool   `json:"configured"`
	Authenticated  bool   `json:"authenticated"`
	LastSyncAt     *int64 `json:"lastSyncAt,omitempty"`
	PendingChanges int    `json:"pendingChanges"`
	ServerURL      string `json:"serverUrl,omitempty"`
}
