// Package pipeline owns the staged generation workflow: topic ideas,
// keyword/tag enrichment, article generation, derived variants and the
// save step. Every stage tracks its own idle/inFlight/succeeded/failed
// state so one failure never blocks the others.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"blogsmith/internal/blog"
	"blogsmith/internal/genclient"
)

// Backend is the slice of the generation client the session drives.
// *genclient.Client satisfies it.
type Backend interface {
	Topics(ctx context.Context, category, userInput string) ([]string, error)
	Keywords(ctx context.Context, topic string) ([]string, error)
	Tags(ctx context.Context, topic string) ([]string, error)
	GenerateArticle(ctx context.Context, req genclient.ArticleRequest) (*blog.Article, error)
	Repurpose(ctx context.Context, title, content string, kind blog.RepurposeKind) (blog.Repurposed, error)
	Translate(ctx context.Context, title, content string, lang blog.Language) (blog.Translation, error)
	Save(ctx context.Context, article *blog.Article, sc genclient.SaveContext) (string, error)
}

var (
	ErrNoTopic        = errors.New("pipeline: no topic chosen")
	ErrNoArticle      = errors.New("pipeline: no article generated yet")
	ErrSuggestionBusy = errors.New("pipeline: suggestions still in flight")
	ErrAlreadySaved   = errors.New("pipeline: article already saved")
	ErrUnknownVariant = errors.New("pipeline: unknown repurpose variant")
)

type stageStatus struct {
	state   blog.StageState
	message string
}

// Session is one interactive generation session. Methods block until the
// underlying call completes; variant operations may run concurrently and
// are tracked per key.
type Session struct {
	backend Backend

	mu           sync.Mutex
	selection    blog.SelectionContext
	article      *blog.Article
	repurposed   map[blog.RepurposeKind]blog.Repurposed
	translations map[blog.Language]blog.Translation
	stages       map[blog.StageKind]*stageStatus
	variants     map[string]*stageStatus
	saveDegraded bool
}

func NewSession(backend Backend) *Session {
	s := &Session{backend: backend}
	s.resetLocked()
	return s
}

func (s *Session) resetLocked() {
	s.selection = blog.SelectionContext{}
	s.article = nil
	s.repurposed = make(map[blog.RepurposeKind]blog.Repurposed)
	s.translations = make(map[blog.Language]blog.Translation)
	s.stages = map[blog.StageKind]*stageStatus{
		blog.StageTopicIdeas:      {},
		blog.StageKeywordsAndTags: {},
		blog.StageArticle:         {},
		blog.StageRepurpose:       {},
		blog.StageTranslate:       {},
		blog.StageSave:            {},
	}
	s.variants = make(map[string]*stageStatus)
	s.saveDegraded = false
}

// Reset is the full-teardown transition: every stage back to idle, all
// working state and the sticky save flag cleared.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Selection returns a copy of the current working state.
func (s *Session) Selection() blog.SelectionContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Article returns the current article, or nil before generation.
func (s *Session) Article() *blog.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.article
}

// StageState reports the coarse state and failure message of one stage.
func (s *Session) StageState(kind blog.StageKind) (blog.StageState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stages[kind]
	if !ok {
		return blog.StageIdle, ""
	}
	return st.state, st.message
}

// VariantState reports the fine-grained state of one repurpose/translate
// key, e.g. "repurpose:youtubeScript" or "translate:English".
func (s *Session) VariantState(key string) (blog.StageState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.variants[key]
	if !ok {
		return blog.StageIdle, ""
	}
	return st.state, st.message
}

// ActiveVariants lists the variant keys currently in flight.
func (s *Session) ActiveVariants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k, st := range s.variants {
		if st.state == blog.StageInFlight {
			keys = append(keys, k)
		}
	}
	return keys
}

// SaveDegraded reports the sticky persistence failure flag.
func (s *Session) SaveDegraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveDegraded
}

// ClearSaveDegraded acknowledges a persistence failure. No transition
// clears the flag implicitly besides Reset.
func (s *Session) ClearSaveDegraded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveDegraded = false
}

// SetCategory / SetFreeformIdea / SetTargetAudience / SetLength /
// SetAuthorInsight update pre-topic inputs; no network effect.
func (s *Session) SetCategory(v string) { s.withLock(func() { s.selection.Category = v }) }
func (s *Session) SetFreeformIdea(v string) {
	s.withLock(func() { s.selection.FreeformIdea = v })
}
func (s *Session) SetTargetAudience(v string) {
	s.withLock(func() { s.selection.TargetAudience = v })
}
func (s *Session) SetLength(v blog.LengthClass) { s.withLock(func() { s.selection.Length = v }) }
func (s *Session) SetAuthorInsight(v string) {
	s.withLock(func() { s.selection.AuthorInsight = v })
}

func (s *Session) withLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// SuggestTopics is always invokable. It clears the chosen topic and
// everything downstream before issuing the request, so stale derived
// state never survives a topic re-roll.
func (s *Session) SuggestTopics(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	s.selection.ClearDownstreamOfTopic()
	s.selection.SuggestedTopics = nil
	s.article = nil
	s.repurposed = make(map[blog.RepurposeKind]blog.Repurposed)
	s.translations = make(map[blog.Language]blog.Translation)
	s.stages[blog.StageTopicIdeas] = &stageStatus{state: blog.StageInFlight}
	category, idea := s.selection.Category, s.selection.FreeformIdea
	s.mu.Unlock()

	topics, err := s.backend.Topics(ctx, category, idea)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stages[blog.StageTopicIdeas] = &stageStatus{state: blog.StageFailed, message: err.Error()}
		return nil, err
	}
	s.selection.SuggestedTopics = topics
	s.stages[blog.StageTopicIdeas] = &stageStatus{state: blog.StageSucceeded}
	return topics, nil
}

// ChooseTopic is the composite transition: it commits the topic (typed
// or picked from suggestions) and immediately triggers the concurrent
// keyword and tag suggestions for it. Both calls must succeed before
// either list is committed; on any failure neither is set and the stage
// as a whole is failed.
func (s *Session) ChooseTopic(ctx context.Context, topic string) error {
	if topic == "" {
		return ErrNoTopic
	}
	s.mu.Lock()
	s.selection.ClearDownstreamOfTopic()
	s.selection.Topic = topic
	s.article = nil
	s.repurposed = make(map[blog.RepurposeKind]blog.Repurposed)
	s.translations = make(map[blog.Language]blog.Translation)
	s.stages[blog.StageKeywordsAndTags] = &stageStatus{state: blog.StageInFlight}
	s.mu.Unlock()

	var (
		wg       sync.WaitGroup
		keywords []string
		tags     []string
		kwErr    error
		tagErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		keywords, kwErr = s.backend.Keywords(ctx, topic)
	}()
	go func() {
		defer wg.Done()
		tags, tagErr = s.backend.Tags(ctx, topic)
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := errors.Join(kwErr, tagErr); err != nil {
		s.stages[blog.StageKeywordsAndTags] = &stageStatus{state: blog.StageFailed, message: err.Error()}
		return err
	}
	s.selection.SuggestedKeywords = keywords
	s.selection.SuggestedTags = tags
	s.stages[blog.StageKeywordsAndTags] = &stageStatus{state: blog.StageSucceeded}
	return nil
}

// ToggleKeyword flips membership of kw in the selected set. Only members
// of the current suggestion list are eligible; the selected sets stay a
// subset of what was last suggested for this topic.
func (s *Session) ToggleKeyword(kw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.selection.SuggestedKeywords, kw) {
		s.selection.ToggleKeyword(kw)
	}
}

// ToggleTag flips membership of tag in the selected set.
func (s *Session) ToggleTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.selection.SuggestedTags, tag) {
		s.selection.ToggleTag(tag)
	}
}

func contains(set []string, member string) bool {
	for _, m := range set {
		if m == member {
			return true
		}
	}
	return false
}

// GenerateArticle runs the streaming generation stage. It requires a
// chosen topic and refuses to run while either suggestion stage is in
// flight, so the article never races a topic that may still change. On
// success the new article replaces the old one and all derived content
// is dropped.
func (s *Session) GenerateArticle(ctx context.Context, onChunk func(string)) (*blog.Article, error) {
	s.mu.Lock()
	if s.selection.Topic == "" {
		s.mu.Unlock()
		return nil, ErrNoTopic
	}
	if s.stages[blog.StageTopicIdeas].state == blog.StageInFlight ||
		s.stages[blog.StageKeywordsAndTags].state == blog.StageInFlight {
		s.mu.Unlock()
		return nil, ErrSuggestionBusy
	}
	s.article = nil
	s.repurposed = make(map[blog.RepurposeKind]blog.Repurposed)
	s.translations = make(map[blog.Language]blog.Translation)
	s.stages[blog.StageArticle] = &stageStatus{state: blog.StageInFlight}
	req := genclient.ArticleRequest{
		Topic:          s.selection.Topic,
		Keywords:       s.selection.Keywords,
		Tags:           s.selection.Tags,
		TargetAudience: s.selection.TargetAudience,
		AuthorInsight:  s.selection.AuthorInsight,
		Length:         s.selection.Length,
		Category:       s.selection.Category,
		OnChunk:        onChunk,
	}
	s.mu.Unlock()

	article, err := s.backend.GenerateArticle(ctx, req)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stages[blog.StageArticle] = &stageStatus{state: blog.StageFailed, message: err.Error()}
		return nil, err
	}
	s.article = article
	s.stages[blog.StageArticle] = &stageStatus{state: blog.StageSucceeded}
	return article, nil
}

// Repurpose derives one variant from the current article. Variants are
// keyed independently; concurrent requests for different kinds do not
// interfere, and a repeated request overwrites the stored entry.
func (s *Session) Repurpose(ctx context.Context, kind blog.RepurposeKind) (blog.Repurposed, error) {
	if !kind.Valid() {
		return blog.Repurposed{}, ErrUnknownVariant
	}
	key := "repurpose:" + string(kind)

	s.mu.Lock()
	if s.article == nil {
		s.mu.Unlock()
		return blog.Repurposed{}, ErrNoArticle
	}
	title, content := s.article.Title, s.article.MarkdownBody
	s.stages[blog.StageRepurpose] = &stageStatus{state: blog.StageInFlight}
	s.variants[key] = &stageStatus{state: blog.StageInFlight}
	s.mu.Unlock()

	out, err := s.backend.Repurpose(ctx, title, content, kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stages[blog.StageRepurpose] = &stageStatus{state: blog.StageFailed, message: err.Error()}
		s.variants[key] = &stageStatus{state: blog.StageFailed, message: err.Error()}
		return blog.Repurposed{}, err
	}
	s.repurposed[kind] = out
	s.stages[blog.StageRepurpose] = &stageStatus{state: blog.StageSucceeded}
	s.variants[key] = &stageStatus{state: blog.StageSucceeded}
	return out, nil
}

// Translate derives a translation keyed by target language.
func (s *Session) Translate(ctx context.Context, lang blog.Language) (blog.Translation, error) {
	key := "translate:" + string(lang)

	s.mu.Lock()
	if s.article == nil {
		s.mu.Unlock()
		return blog.Translation{}, ErrNoArticle
	}
	title, content := s.article.Title, s.article.MarkdownBody
	s.stages[blog.StageTranslate] = &stageStatus{state: blog.StageInFlight}
	s.variants[key] = &stageStatus{state: blog.StageInFlight}
	s.mu.Unlock()

	out, err := s.backend.Translate(ctx, title, content, lang)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stages[blog.StageTranslate] = &stageStatus{state: blog.StageFailed, message: err.Error()}
		s.variants[key] = &stageStatus{state: blog.StageFailed, message: err.Error()}
		return blog.Translation{}, err
	}
	s.translations[lang] = out
	s.stages[blog.StageTranslate] = &stageStatus{state: blog.StageSucceeded}
	s.variants[key] = &stageStatus{state: blog.StageSucceeded}
	return out, nil
}

// Repurposed returns the stored variant for kind, if any.
func (s *Session) Repurposed(kind blog.RepurposeKind) (blog.Repurposed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.repurposed[kind]
	return out, ok
}

// Translation returns the stored translation for lang, if any.
func (s *Session) Translation(lang blog.Language) (blog.Translation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.translations[lang]
	return out, ok
}

// Save persists the current article at most once. An article that
// already carries an external id is left untouched and no call is
// issued. A failure sets the sticky degraded flag; callers suppress
// retries until it is explicitly cleared.
func (s *Session) Save(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.article == nil {
		s.mu.Unlock()
		return "", ErrNoArticle
	}
	if s.article.Saved() {
		id := s.article.ExternalID()
		s.mu.Unlock()
		return id, ErrAlreadySaved
	}
	article := s.article
	sc := genclient.SaveContext{
		Category:      s.selection.Category,
		UserInputIdea: s.selection.FreeformIdea,
		Tags:          s.selection.Tags,
	}
	s.stages[blog.StageSave] = &stageStatus{state: blog.StageInFlight}
	s.mu.Unlock()

	pageID, err := s.backend.Save(ctx, article, sc)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stages[blog.StageSave] = &stageStatus{state: blog.StageFailed, message: err.Error()}
		s.saveDegraded = true
		return "", err
	}
	article.MarkSaved(pageID)
	s.stages[blog.StageSave] = &stageStatus{state: blog.StageSucceeded}
	return pageID, nil
}

// FailureMessage formats the stored stage failure for display, falling
// back to a generic description when a stage never stored one.
func (s *Session) FailureMessage(kind blog.StageKind) string {
	state, msg := s.StageState(kind)
	if state != blog.StageFailed {
		return ""
	}
	if msg == "" {
		return fmt.Sprintf("stage %s failed", kind)
	}
	return msg
}
