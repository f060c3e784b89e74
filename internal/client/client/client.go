// Package client talks to the remote sync server and owns the local
// database bootstrap. The sync engine consumes it through the Client
// interface so transports can be faked in tests.
package client

import (
	"context"

	"github.com/fincatch/fincatch/internal/client/models"
)

// Client performs the combined push+pull exchange against the sync server.
type Client interface {
	// Delta sends local dirty records and retrieves remote changes since
	// the given checkpoint in a single round trip. No local state is
	// touched here; persistence is the caller's job.
	Delta(ctx context.Context, req *DeltaRequest) (*DeltaResponse, error)
}

// DeltaRequest is the body of one sync POST.
type DeltaRequest struct {
	Push PushRequest `json:"push"`
	Pull PullRequest `json:"pull"`
}

type PushRequest struct {
	Records         []models.SyncRecord `json:"records"`
	ClientTimestamp int64               `json:"clientTimestamp"`
}

type PullRequest struct {
	// SinceCheckpoint is nil on the very first pull.
	SinceCheckpoint *models.Checkpoint `json:"sinceCheckpoint"`
}

// DeltaResponse is the server's answer to a delta exchange.
type DeltaResponse struct {
	Push PushResult `json:"push"`
	Pull PullResult `json:"pull"`
}

type PushResult struct {
	Synced    int        `json:"synced"`
	Conflicts []Conflict `json:"conflicts"`
}

// Conflict identifies a pushed record the server rejected because of a
// version mismatch. The row stays dirty locally and is retried as-is.
type Conflict struct {
	TableName string `json:"tableName"`
	RowID     string `json:"rowId"`
	Reason    string `json:"reason"`
}

type PullResult struct {
	Records       []models.SyncRecord `json:"records"`
	NewCheckpoint models.Checkpoint   `json:"newCheckpoint"`
}
