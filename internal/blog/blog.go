// Package blog holds the domain model shared by the pipeline, the
// generation client and the persistence adapter.
package blog

import "github.com/google/uuid"

// LengthClass is the requested article length. The empty value means the
// user did not pick one and the prompt omits the length instruction.
type LengthClass string

const (
	LengthUnset  LengthClass = ""
	LengthShort  LengthClass = "short"
	LengthMedium LengthClass = "medium"
	LengthLong   LengthClass = "long"
)

// RepurposeKind selects the derived-content variant to generate.
type RepurposeKind string

const (
	RepurposeYoutubeScript RepurposeKind = "youtubeScript"
	RepurposeShortsIdeas   RepurposeKind = "shortsIdeas"
	RepurposeThreadsPosts  RepurposeKind = "threadsPosts"
)

// Valid reports whether k is one of the three supported variants.
func (k RepurposeKind) Valid() bool {
	switch k {
	case RepurposeYoutubeScript, RepurposeShortsIdeas, RepurposeThreadsPosts:
		return true
	}
	return false
}

// Language is a translation target, e.g. "English", "Chinese", "Spanish".
type Language string

// SelectionContext is the mutable working state of one generation session.
// Keywords and Tags are always a subset of the most recently suggested
// lists for the current topic.
type SelectionContext struct {
	Category          string
	FreeformIdea      string
	Topic             string
	SuggestedTopics   []string
	SuggestedKeywords []string
	SuggestedTags     []string
	Keywords          []string
	Tags              []string
	TargetAudience    string
	Length            LengthClass
	AuthorInsight     string
}

// ToggleKeyword flips membership of kw in the selected keyword set.
// Order of the remaining members is preserved.
func (s *SelectionContext) ToggleKeyword(kw string) {
	s.Keywords = toggle(s.Keywords, kw)
}

// ToggleTag flips membership of tag in the selected tag set.
func (s *SelectionContext) ToggleTag(tag string) {
	s.Tags = toggle(s.Tags, tag)
}

func toggle(set []string, member string) []string {
	for i, m := range set {
		if m == member {
			return append(set[:i:i], set[i+1:]...)
		}
	}
	return append(set, member)
}

// ClearDownstreamOfTopic drops everything that depends on the chosen topic:
// the topic itself, both suggestion lists and both selected sets.
func (s *SelectionContext) ClearDownstreamOfTopic() {
	s.Topic = ""
	s.SuggestedKeywords = nil
	s.SuggestedTags = nil
	s.Keywords = nil
	s.Tags = nil
}

// Article is the pipeline's terminal artifact. It is immutable after
// creation except for RenderedHTML and ExternalID, each set at most once.
type Article struct {
	ID           string
	Title        string
	MarkdownBody string

	renderedHTML string
	externalID   string
}

// NewArticle assigns a session-unique id and returns the finished article.
func NewArticle(title, markdown string) *Article {
	return &Article{ID: uuid.NewString(), Title: title, MarkdownBody: markdown}
}

// RenderedHTML returns the cached HTML rendering, or "" when not yet set.
func (a *Article) RenderedHTML() string { return a.renderedHTML }

// SetRenderedHTML stores the rendering once; later calls are ignored.
func (a *Article) SetRenderedHTML(html string) {
	if a.renderedHTML == "" {
		a.renderedHTML = html
	}
}

// ExternalID returns the destination-store page id, or "" before a save.
func (a *Article) ExternalID() string { return a.externalID }

// MarkSaved records the destination-store id once; later calls are ignored.
func (a *Article) MarkSaved(pageID string) {
	if a.externalID == "" {
		a.externalID = pageID
	}
}

// Saved reports whether the article has been persisted already.
func (a *Article) Saved() bool { return a.externalID != "" }

// ShortsIdea is one short-form video idea from the repurpose stage.
type ShortsIdea struct {
	Title      string `json:"title"`
	Script     string `json:"script"`
	Suggestion string `json:"suggestion"`
}

// Repurposed is one derived-content variant. Exactly one of Script, Ideas
// or Posts is populated depending on Kind.
type Repurposed struct {
	Kind   RepurposeKind
	Script string
	Ideas  []ShortsIdea
	Posts  []string
}

// Translation is a translated title/body pair, markdown structure intact.
type Translation struct {
	Title   string
	Content string
}

// StageKind identifies one discrete pipeline operation.
type StageKind string

const (
	StageTopicIdeas      StageKind = "topic_ideas"
	StageKeywordsAndTags StageKind = "keywords_and_tags"
	StageArticle         StageKind = "article"
	StageRepurpose       StageKind = "repurpose"
	StageTranslate       StageKind = "translate"
	StageSave            StageKind = "save"
)

// StageState tracks one stage kind's lifecycle. Failed is distinct from
// Idle so the caller can tell "attempted and failed" from "never attempted".
type StageState int

const (
	StageIdle StageState = iota
	StageInFlight
	StageSucceeded
	StageFailed
)

func (s StageState) String() string {
	switch s {
	case StageInFlight:
		return "in_flight"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	default:
		return "idle"
	}
}
