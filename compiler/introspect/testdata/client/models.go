package client

import "time"

type Base struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type Post struct {
	Base
	Title    string         `json:"title"`
	Body     *string        `json:"body,omitempty"`
	AuthorID int            `json:"authorId"`
	Tags     []*Tag         `json:"tags"`
	Raw      []byte         `json:"raw"`
	Meta     map[string]any `json:"meta"`
	Secret   string         `json:"-"`
	internal int
}

type Tag struct {
	ID   int
	Name string
}

type Link struct {
	URL string
	Url *string
}

type Role string
