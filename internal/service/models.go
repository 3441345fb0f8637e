package service

import (
	"github.com/sharetube/mediasync/internal/mediasync"
)

type Instance struct {
	Id        string
	Kind      string
	URL       string
	Poster    string
	CreatedAt int64
}

type InstanceState struct {
	Instance     Instance
	Attributes   mediasync.State
	Participants int
	Connected    int
}

type Participant struct {
	Id       string
	Identity mediasync.Identity
}
