package instance

type Instance struct {
	Kind      string `redis:"kind"`
	URL       string `redis:"url"`
	Poster    string `redis:"poster"`
	CreatedAt int64  `redis:"created_at"`
}

type Attributes struct {
	Play        bool    `redis:"play"`
	Seek        float64 `redis:"seek"`
	Volume      float64 `redis:"volume"`
	Mute        bool    `redis:"mute"`
	CurrentTime float64 `redis:"currentTime"`
}

type Participant struct {
	ID       string
	Identity string
}
