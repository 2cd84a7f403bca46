package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"yatube/internal/db"
)

type postJSON struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
	Author  string    `json:"author"`
	Group   *uint     `json:"group"`
	Image   *string   `json:"image"`
}

func newPostJSON(p *db.Post) postJSON {
	out := postJSON{
		ID:      p.ID,
		Text:    p.Text,
		PubDate: p.PubDate,
		Author:  p.Author.Username,
		Group:   p.GroupID,
	}
	if p.Image != "" {
		url := "/media/" + p.Image
		out.Image = &url
	}
	return out
}

type commentJSON struct {
	ID      uint      `json:"id"`
	Author  string    `json:"author"`
	Post    uint      `json:"post"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

func newCommentJSON(c *db.Comment) commentJSON {
	return commentJSON{
		ID:      c.ID,
		Author:  c.Author.Username,
		Post:    c.PostID,
		Text:    c.Text,
		Created: c.Created,
	}
}

type groupJSON struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func newGroupJSON(g *db.Group) groupJSON {
	return groupJSON{ID: g.ID, Title: g.Title, Slug: g.Slug, Description: g.Description}
}

type followJSON struct {
	ID     uint   `json:"id"`
	User   string `json:"user"`
	Author string `json:"author"`
}

func newFollowJSON(f *db.Follow) followJSON {
	return followJSON{ID: f.ID, User: f.User.Username, Author: f.Author.Username}
}

// OptionalID is a nullable primary key that remembers whether it was sent at all,
// so a PATCH can tell "group": null from a missing group.
type OptionalID struct {
	Set     bool
	Value   *uint
	invalid string
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			o.invalid = "Incorrect type. Expected pk value, received " + jsonKind(data) + "."
			return nil
		}
		n = json.Number(s)
	}

	id, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		o.invalid = "Incorrect type. Expected pk value, received " + jsonKind(data) + "."
		return nil
	}
	v := uint(id)
	o.Value = &v
	return nil
}

// Invalid is the reason the sent value could not be read as an id, or "".
func (o OptionalID) Invalid() string {
	return o.invalid
}

func jsonKind(data []byte) string {
	switch data[0] {
	case '"':
		return "str"
	case '{':
		return "dict"
	case '[':
		return "list"
	case 't', 'f':
		return "bool"
	}
	return "float"
}
