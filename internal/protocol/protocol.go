// Package protocol holds the message types and payloads exchanged between
// participants and the hosting server.
package protocol

import "github.com/sharetube/mediasync/internal/mediasync"

// Participant to server.
const (
	TypeAlive           = "ALIVE"
	TypeWriteAttributes = "WRITE_ATTRIBUTES"
	TypeRemoveInstance  = "REMOVE_INSTANCE"
)

// Server to participant.
const (
	TypeInstanceJoined    = "INSTANCE_JOINED"
	TypeAttributesUpdated = "ATTRIBUTES_UPDATED"
	TypeInstanceRemoved   = "INSTANCE_REMOVED"
	TypeError             = "ERROR"
)

type Instance struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	Poster    string `json:"poster,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type InstanceJoinedPayload struct {
	ParticipantID string          `json:"participant_id"`
	Identity      string          `json:"identity"`
	Instance      Instance        `json:"instance"`
	Attributes    mediasync.State `json:"attributes"`
}

type AttributesUpdatedPayload struct {
	SenderID   string            `json:"sender_id"`
	Attributes mediasync.Partial `json:"attributes"`
}

type InstanceRemovedPayload struct {
	InstanceID string `json:"instance_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateInstanceInput struct {
	Kind   string `json:"kind" validate:"required,oneof=audio video"`
	URL    string `json:"url" validate:"required,url"`
	Poster string `json:"poster" validate:"omitempty,url"`
}

type CreateInstanceOutput struct {
	InstanceID    string `json:"instance_id"`
	ParticipantID string `json:"participant_id"`
	Identity      string `json:"identity"`
	Token         string `json:"token"`
}

type AddParticipantInput struct {
	Identity string `json:"identity" validate:"required,oneof=guest listener"`
}

type AddParticipantOutput struct {
	ParticipantID string `json:"participant_id"`
	Identity      string `json:"identity"`
	Token         string `json:"token"`
}

type InstanceOutput struct {
	Instance     Instance        `json:"instance"`
	Attributes   mediasync.State `json:"attributes"`
	Participants int             `json:"participants"`
	Connected    int             `json:"connected"`
}
