package domain

type SectionResult struct {
	Name      string   `json:"name"`
	Met       bool     `json:"met"`
	Options   []string `json:"options,omitempty"` // Eligible courses not yet taken, in declaration order
	Remaining int      `json:"remaining"`         // Credits still owed, 0 when met
	Matched   int      `json:"matched"`           // Credits consumed from the transcript
}

// CategoryResult is the outcome for one top-level category. Flat and
// specialization pools carry a single section named after the category.
type CategoryResult struct {
	Category string          `json:"category"`
	Kind     NodeKind        `json:"kind"`
	Sections []SectionResult `json:"sections"`
}

func (c CategoryResult) HasSections() bool {
	return c.Kind == KindAlternatives || c.Kind == KindSections
}

func (c CategoryResult) Met() bool {
	for _, s := range c.Sections {
		if !s.Met {
			return false
		}
	}
	return true
}

type TrackResult struct {
	Track      string           `json:"track,omitempty"`
	Categories []CategoryResult `json:"categories"`
}

// Complete reports whether every section of every category is met.
func (t TrackResult) Complete() bool {
	for _, c := range t.Categories {
		if !c.Met() {
			return false
		}
	}
	return true
}

// MatchedCredits sums the credit consumed from the transcript by every section.
func (t TrackResult) MatchedCredits() int {
	total := 0
	for _, c := range t.Categories {
		for _, s := range c.Sections {
			total += s.Matched
		}
	}
	return total
}

// Recommendation is the resolver output for one (transcript, major) pair.
// Majors without tracks have exactly one TrackResult with an empty Track.
type Recommendation struct {
	Major      string        `json:"major"`
	Supported  bool          `json:"supported"`
	MultiTrack bool          `json:"multi_track"`
	Tracks     []TrackResult `json:"tracks,omitempty"`
}

// Complete reports whether no track has an unmet section. Unsupported majors
// are never complete.
func (r *Recommendation) Complete() bool {
	if !r.Supported {
		return false
	}
	for _, t := range r.Tracks {
		if !t.Complete() {
			return false
		}
	}
	return true
}
