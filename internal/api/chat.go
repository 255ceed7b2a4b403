package api

import "context"

const (
	historyFallback = "Failed to load chat history"
	sendFallback    = "Failed to send message"
)

// ChatHistory fetches the authoritative ordered message list for a character.
func (c *Client) ChatHistory(ctx context.Context, characterID string) ([]Message, error) {
	var messages []Message
	if err := c.get(ctx, "/chat/"+characterID+"/history", &messages, historyFallback); err != nil {
		return nil, err
	}
	return messages, nil
}

// sendRequest is the JSON body for the send endpoint.
type sendRequest struct {
	Message string `json:"message"`
}

// SendMessage sends the raw message text and returns the model's reply with
// its server-supplied timestamp.
func (c *Client) SendMessage(ctx context.Context, characterID, text string) (ChatReply, error) {
	var reply ChatReply
	if err := c.postJSON(ctx, "/chat/"+characterID, sendRequest{Message: text}, &reply, sendFallback); err != nil {
		return ChatReply{}, err
	}
	return reply, nil
}
