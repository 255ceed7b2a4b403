package api

import "context"

const (
	listCharactersFallback  = "Failed to load characters. Please try again."
	createCharacterFallback = "Failed to create character"
	deleteCharacterFallback = "Failed to delete character"
)

// ListCharacters fetches the full roster in server order.
func (c *Client) ListCharacters(ctx context.Context) ([]Character, error) {
	var characters []Character
	if err := c.get(ctx, "/characters", &characters, listCharactersFallback); err != nil {
		return nil, err
	}
	return characters, nil
}

// CreateCharacter creates a character and returns the server's confirmed
// copy, including the server-assigned id.
func (c *Client) CreateCharacter(ctx context.Context, draft CharacterDraft) (Character, error) {
	fields := map[string]string{
		"name":        draft.Name,
		"personality": draft.Personality,
		"backstory":   draft.Backstory,
	}
	var character Character
	if err := c.submitMultipart(ctx, "POST", "/character", fields, draft.Image, &character, createCharacterFallback); err != nil {
		return Character{}, err
	}
	return character, nil
}

// DeleteCharacter removes a character. The server's confirmation payload is
// discarded; success is all the caller needs.
func (c *Client) DeleteCharacter(ctx context.Context, id string) error {
	return c.delete(ctx, "/character/"+id, deleteCharacterFallback)
}
