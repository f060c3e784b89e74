package common

// Header names used on requests to the sync server.
const (
	AuthorizationHeader = "Authorization"
	APIKeyHeader        = "X-API-Key"
	AppIDHeader         = "X-App-Id"
)

// CheckpointKey is the fixed logical key of the single sync checkpoint row.
// Only one sync peer is supported per installation.
const CheckpointKey = "global"
