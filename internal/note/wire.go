package note

// Wire types mirror the remote store's "message" documents as-is. The
// store is a generic document API; notes are the type=message subset.

type RawMedia struct {
	UUID      string `json:"uuid"`
	Type      string `json:"type"`
	URI       string `json:"uri"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Name      string `json:"name,omitempty"`
}

type Rerum struct {
	CreatedAt     string `json:"createdAt"`
	IsOverwritten string `json:"isOverwritten,omitempty"`
}

type RawMessage struct {
	ID         string     `json:"@id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	BodyText   string     `json:"BodyText"`
	Creator    string     `json:"creator"`
	Media      []RawMedia `json:"media"`
	Audio      []RawMedia `json:"audio"`
	Latitude   string     `json:"latitude"`
	Longitude  string     `json:"longitude"`
	Published  bool       `json:"published"`
	Tags       []string   `json:"tags"`
	IsArchived bool       `json:"isArchived,omitempty"`
	Rerum      Rerum      `json:"__rerum,omitempty"`
}

// ToRaw builds the message document for create/overwrite requests.
// Server-owned fields (__rerum) are left empty.
func (n Note) ToRaw() RawMessage {
	raw := RawMessage{
		ID:        n.ID,
		Type:      "message",
		Title:     n.Title,
		BodyText:  n.Text,
		Creator:   n.Creator,
		Latitude:  n.Latitude,
		Longitude: n.Longitude,
		Published: n.Published,
		Tags:      n.Tags,
	}
	for _, m := range n.Media {
		raw.Media = append(raw.Media, rawFromMedia(m))
	}
	for _, a := range n.Audio {
		raw.Audio = append(raw.Audio, rawFromMedia(a))
	}
	return raw
}

func rawFromMedia(m Media) RawMedia {
	return RawMedia{
		UUID:      m.UUID,
		Type:      string(m.Type),
		URI:       m.URI,
		Thumbnail: m.Thumbnail,
		Duration:  m.Duration,
		Name:      m.Name,
	}
}
