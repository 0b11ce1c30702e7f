package platforms

import "context"

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Message struct {
	Title       string
	Content     string
	Description string
	URL         string
	Color       int
	Timestamp   string
	Footer      string
	Thumbnail   string
	Fields      []Field
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, endpoint string, msg Message) error
}
