package models

import "time"

// PushItem is one queued mutation as serialized for the push request.
type PushItem struct {
	OpID            string       `json:"op_id"`
	Entity          EntityKind   `json:"entity"`
	EntityID        string       `json:"entity_id"`
	Type            MutationType `json:"type"`
	BaseVersion     int64        `json:"base_version"`
	UpdatedAtClient time.Time    `json:"updated_at_client"`
	Payload         Document     `json:"payload,omitempty"`
}

// PushItemFromMutation converts a queue row to its wire form.
func PushItemFromMutation(m PendingMutation) PushItem {
	return PushItem{
		OpID:            m.OpID,
		Entity:          m.Entity,
		EntityID:        m.EntityID,
		Type:            m.Type,
		BaseVersion:     m.BaseVersion,
		UpdatedAtClient: m.UpdatedAtClient,
		Payload:         m.Payload,
	}
}

// PushRequest uploads a batch of pending mutations.
type PushRequest struct {
	DeviceID   string     `json:"device_id"`
	BaseCursor string     `json:"base_cursor,omitempty"`
	Mutations  []PushItem `json:"mutations"`
}

// FailedOp is one push entry the server could not process for a
// non-conflict reason.
type FailedOp struct {
	OpID   string `json:"op_id,omitempty"`
	Reason string `json:"reason"`
}

// PushResponse reports the per-mutation outcome of a push.
type PushResponse struct {
	AcknowledgedOpIDs []string   `json:"acknowledged_op_ids"`
	Conflicts         []Conflict `json:"conflicts,omitempty"`
	Failed            []FailedOp `json:"failed,omitempty"`
	NewCursor         string     `json:"new_cursor,omitempty"`
}

// PullRequest asks for the next page of the server's change stream.
type PullRequest struct {
	Cursor string `json:"cursor,omitempty"`
	Limit  int    `json:"limit"`
}

// ChangeType tags a pulled change.
type ChangeType string

const (
	ChangeUpsert ChangeType = "upsert"
	ChangeDelete ChangeType = "delete"
)

// Change is one entry of a pull page.
type Change struct {
	Entity   EntityKind `json:"entity"`
	Type     ChangeType `json:"type"`
	EntityID string     `json:"entity_id,omitempty"`

	// Version is the server row version carried by the change. Upsert
	// changes may instead embed it in Doc under "version".
	Version int64 `json:"version,omitempty"`

	// Doc is the full server document for upserts; absent for deletes.
	Doc Document `json:"doc,omitempty"`
}

// PullResponse is one page of the server's change stream.
type PullResponse struct {
	Changes    []Change `json:"changes"`
	NextCursor string   `json:"next_cursor"`
	HasMore    bool     `json:"has_more"`
}
