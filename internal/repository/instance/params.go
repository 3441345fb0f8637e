package instance

type SetInstanceParams struct {
	InstanceId string
	Instance   Instance
	Attributes Attributes
}

// UpdateAttributesParams holds a partial update: nil fields are left as
// stored.
type UpdateAttributesParams struct {
	InstanceId  string
	Play        *bool    `redis:"play"`
	Seek        *float64 `redis:"seek"`
	Volume      *float64 `redis:"volume"`
	Mute        *bool    `redis:"mute"`
	CurrentTime *float64 `redis:"currentTime"`
}

type SetParticipantParams struct {
	InstanceId    string
	ParticipantId string
	Identity      string
}
