package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type RecordFingerprintRequest struct {
	Name  string          `json:"name"`
	Value string          `json:"value"`
	Data  json.RawMessage `json:"data"`
}

// IngestEvent is one observation in a server-to-server ingest batch.
type IngestEvent struct {
	UserID uuid.UUID       `json:"user_id"`
	Name   string          `json:"name"`
	Value  string          `json:"value"`
	Data   json.RawMessage `json:"data"`
}

type IngestRequest struct {
	Events []IngestEvent `json:"events"`
}

type FlagFingerprintRequest struct {
	Value  string `json:"value"`
	Type   string `json:"type"` // hide or silence
	Remove bool   `json:"remove"`
}

type IgnoreUserRequest struct {
	Username      string `json:"username"`
	OtherUsername string `json:"other_username"`
	Remove        bool   `json:"remove"`
}

type SetSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"` // string, bool, int, json
}
