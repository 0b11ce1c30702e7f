package platforms

import "context"

// DiscordAdapter posts one embed per message to a Discord webhook URL.
type DiscordAdapter struct {
	client *HTTPClient
}

func NewDiscordAdapter(client *HTTPClient) *DiscordAdapter {
	return &DiscordAdapter{client: client}
}

func (a *DiscordAdapter) Name() string {
	return "discord"
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func (a *DiscordAdapter) Send(ctx context.Context, endpoint string, msg Message) error {
	fields := make([]discordField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, discordField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	embed := map[string]any{
		"title":       msg.Title,
		"description": msg.Description,
		"fields":      fields,
		"color":       msg.Color,
	}
	if msg.URL != "" {
		embed["url"] = msg.URL
	}
	if msg.Timestamp != "" {
		embed["timestamp"] = msg.Timestamp
	}
	if msg.Footer != "" {
		embed["footer"] = map[string]string{"text": msg.Footer}
	}
	if msg.Thumbnail != "" {
		embed["thumbnail"] = map[string]string{"url": msg.Thumbnail}
	}
	payload := map[string]any{
		"content":          msg.Content,
		"embeds":           []map[string]any{embed},
		"allowed_mentions": map[string]any{"parse": []string{}},
	}
	return a.client.PostJSON(ctx, endpoint, payload)
}
