package types

// ClientAction is the JSON frame the webapp sends over the websocket. Image
// submissions are not actions; they arrive as raw binary frames.
type ClientAction struct {
	Action  string        `json:"action"` // "access" | "join" | "start" | "type"
	Content ActionContent `json:"content"`
}

type ActionContent struct {
	GameID   string `json:"gameId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Text     string `json:"text,omitempty"`
}
