package blog

// RawEntry mirrors one entry of the Blogger JSON feed. Entries from generic
// RSS/Atom feeds are converted into the same shape before normalization.
type RawEntry struct {
	Title     Text       `json:"title"`
	Links     []Link     `json:"link"`
	Published Text       `json:"published"`
	Content   *Text      `json:"content,omitempty"`
	Summary   *Text      `json:"summary,omitempty"`
	Category  []Category `json:"category,omitempty"`
	Thumbnail *Thumbnail `json:"media$thumbnail,omitempty"`
}

// Text is Blogger's {"$t": "..."} wrapper.
type Text struct {
	T string `json:"$t"`
}

type Link struct {
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
	Href string `json:"href"`
}

type Category struct {
	Scheme string `json:"scheme,omitempty"`
	Term   string `json:"term"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Height string `json:"height,omitempty"`
	Width  string `json:"width,omitempty"`
}

// Feed is the document returned by the Blogger JSON API.
type Feed struct {
	Feed struct {
		Title   Text       `json:"title"`
		Entries []RawEntry `json:"entry"`
	} `json:"feed"`
}

// AlternateLink returns the href of the rel="alternate" link.
func (e RawEntry) AlternateLink() (string, bool) {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href, true
		}
	}
	return "", false
}

// ContentHTML returns the entry body or an empty string.
func (e RawEntry) ContentHTML() string {
	if e.Content == nil {
		return ""
	}
	return e.Content.T
}
