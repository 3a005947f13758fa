package model

type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type BroadcastRequest struct {
	// Texts maps a language to the message sent to users of that language.
	Texts map[string]string `json:"texts"`
	Photo string            `json:"photo"`
	Video string            `json:"video"`
	// Album holds the file ids of photos sent together as one album.
	Album  []string `json:"album"`
	Button *Button  `json:"button"`
}

type BroadcastResponse struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
	// Queued counts sent messages when there is no queue.
	Queued int `json:"queued"`
	Failed int `json:"failed"`
}
