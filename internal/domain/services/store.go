package services

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

const (
	welcomeTitle    = "Welcome to SlideForge"
	welcomeSubtitle = "Create simple slides in your browser"
)

// Listener receives a private copy of the deck after every accepted mutation.
// Listeners may read the store but must not mutate it.
type Listener func(deck entities.Deck)

type subscription struct {
	id       int
	listener Listener
}

// StoreOption configures a DeckStore
type StoreOption func(*DeckStore)

// WithIDGenerator replaces the default UUID slide identifier source
func WithIDGenerator(gen ports.IDGenerator) StoreOption {
	return func(s *DeckStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets the store logger
func WithLogger(log *zap.Logger) StoreOption {
	return func(s *DeckStore) {
		if log != nil {
			s.log = log.Named("store")
		}
	}
}

// WithDeckConfig applies configured defaults for new slides and the initial deck
func WithDeckConfig(cfg entities.DeckConfig) StoreOption {
	return func(s *DeckStore) {
		if t := cfg.GetDefaultTemplate(); t.IsValid() {
			s.defaultTemplate = t
		}
		if cfg.DefaultTheme != "" {
			s.initialTheme = cfg.DefaultTheme
		}
		s.initialName = cfg.GetDefaultName()
	}
}

// NewUUID is the default slide identifier generator
func NewUUID() string {
	return uuid.NewString()
}

// DeckStore owns the deck and serializes every mutation. References to
// missing slides and out of range indices are ignored rather than reported.
type DeckStore struct {
	mu   sync.Mutex
	deck entities.Deck

	schema ports.ContentSchema
	newID  ports.IDGenerator
	log    *zap.Logger

	defaultTemplate entities.TemplateName
	initialTheme    string
	initialName     string

	// seq numbers commits under mu; deliveries wait on turn until every
	// earlier commit has been delivered
	seq      uint64
	notifyMu sync.Mutex
	turn     *sync.Cond
	notified uint64

	subMu     sync.Mutex
	listeners []subscription
	nextSubID int
}

// NewDeckStore creates a store holding the welcome deck: one title slide, active,
// with the default theme and name
func NewDeckStore(schema ports.ContentSchema, opts ...StoreOption) *DeckStore {
	s := &DeckStore{
		schema:          schema,
		newID:           NewUUID,
		log:             zap.NewNop(),
		defaultTemplate: entities.DefaultTemplate,
		initialTheme:    entities.DefaultTheme,
		initialName:     entities.DefaultDeckName,
	}
	s.turn = sync.NewCond(&s.notifyMu)
	for _, opt := range opts {
		opt(s)
	}

	welcome := entities.Slide{
		ID:       s.newID(),
		Template: entities.TemplateTitle,
		Content: entities.Content{
			"title":    welcomeTitle,
			"subtitle": welcomeSubtitle,
		},
	}
	s.deck = entities.Deck{
		Slides:        []entities.Slide{welcome},
		ActiveSlideID: welcome.ID,
		Theme:         s.initialTheme,
		Name:          s.initialName,
	}

	return s
}

// Subscribe registers a listener; the returned function removes it
func (s *DeckStore) Subscribe(l Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, listener: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// GetState returns a deep copy of the current deck
func (s *DeckStore) GetState() entities.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Clone()
}

// ActiveSlide returns a copy of the active slide
func (s *DeckStore) ActiveSlide() (entities.Slide, bool) {
	return s.Slide(s.GetState().ActiveSlideID)
}

// Slide returns a copy of the slide with id
func (s *DeckStore) Slide(id string) (entities.Slide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slide, ok := s.deck.SlideByID(id); ok {
		return slide.Clone(), true
	}
	return entities.Slide{}, false
}

// AddSlide inserts a slide with default content right after the active slide,
// or at the end when nothing is active, and makes it active. An omitted or
// unrecognized template falls back to the configured default. Returns the new id.
func (s *DeckStore) AddSlide(template ...entities.TemplateName) string {
	t := s.defaultTemplate
	if len(template) > 0 && template[0] != "" {
		t = template[0]
	}
	content, ok := s.schema.DefaultContent(t)
	if !ok {
		s.log.Debug("unknown template for new slide, using default", zap.String("template", string(t)))
		t = s.defaultTemplate
		content, _ = s.schema.DefaultContent(t)
	}

	s.mu.Lock()
	slide := entities.Slide{ID: s.newID(), Template: t, Content: content}
	pos := len(s.deck.Slides)
	if i := s.deck.IndexOf(s.deck.ActiveSlideID); i >= 0 {
		pos = i + 1
	}
	s.deck.Slides = insertSlide(s.deck.Slides, pos, slide)
	s.deck.ActiveSlideID = slide.ID
	s.log.Debug("slide added", zap.String("id", slide.ID), zap.String("template", string(t)), zap.Int("position", pos))
	s.commit()

	return slide.ID
}

// DuplicateSlide inserts a copy of slide id with a fresh identifier right after
// the original and makes it active
func (s *DeckStore) DuplicateSlide(id string) (string, bool) {
	s.mu.Lock()
	i := s.deck.IndexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.ignored("duplicate", id)
		return "", false
	}

	cp := s.deck.Slides[i].Clone()
	cp.ID = s.newID()
	s.deck.Slides = insertSlide(s.deck.Slides, i+1, cp)
	s.deck.ActiveSlideID = cp.ID
	s.log.Debug("slide duplicated", zap.String("source", id), zap.String("id", cp.ID))
	s.commit()

	return cp.ID, true
}

// DeleteSlide removes slide id. When it was active, its predecessor (or the new
// first slide) becomes active.
func (s *DeckStore) DeleteSlide(id string) bool {
	s.mu.Lock()
	i := s.deck.IndexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.ignored("delete", id)
		return false
	}

	s.deck.Slides = append(s.deck.Slides[:i:i], s.deck.Slides[i+1:]...)
	if s.deck.ActiveSlideID == id {
		if len(s.deck.Slides) == 0 {
			s.deck.ActiveSlideID = entities.NoActiveSlide
		} else {
			s.deck.ActiveSlideID = s.deck.Slides[max(0, i-1)].ID
		}
	}
	s.log.Debug("slide deleted", zap.String("id", id), zap.String("active", s.deck.ActiveSlideID))
	s.commit()

	return true
}

// ReorderSlides moves the slide at from to position to, shifting the slides in between
func (s *DeckStore) ReorderSlides(from, to int) bool {
	s.mu.Lock()
	n := len(s.deck.Slides)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		s.log.Debug("reorder ignored: index out of range",
			zap.Int("from", from), zap.Int("to", to), zap.Int("slides", n))
		return false
	}
	if from == to {
		s.mu.Unlock()
		return true
	}

	moved := s.deck.Slides[from]
	rest := append(s.deck.Slides[:from:from], s.deck.Slides[from+1:]...)
	s.deck.Slides = insertSlide(rest, to, moved)
	s.log.Debug("slides reordered", zap.Int("from", from), zap.Int("to", to))
	s.commit()

	return true
}

// SetActiveSlide selects slide id
func (s *DeckStore) SetActiveSlide(id string) bool {
	s.mu.Lock()
	if s.deck.IndexOf(id) < 0 {
		s.mu.Unlock()
		s.ignored("select", id)
		return false
	}

	s.deck.ActiveSlideID = id
	s.commit()

	return true
}

// UpdateSlideContent shallow-merges fields into the slide's content. Keys outside
// the slide's template schema are dropped.
func (s *DeckStore) UpdateSlideContent(id string, fields entities.Content) bool {
	s.mu.Lock()
	slide, ok := s.deck.SlideByID(id)
	if !ok {
		s.mu.Unlock()
		s.ignored("update", id)
		return false
	}

	accepted := s.schema.NormalizeContent(slide.Template, fields)
	if dropped := len(fields) - len(accepted); dropped > 0 {
		s.log.Debug("dropped fields outside template schema",
			zap.String("id", id), zap.String("template", string(slide.Template)), zap.Int("dropped", dropped))
	}
	if slide.Content == nil {
		slide.Content = entities.Content{}
	}
	for k, v := range accepted {
		slide.Content[k] = v
	}
	s.log.Debug("slide content updated", zap.String("id", id), zap.Int("fields", len(accepted)))
	s.commit()

	return true
}

// SetTemplate switches the slide's variant: the new defaults are overwritten
// by existing values of shared fields. Unknown variants are ignored.
func (s *DeckStore) SetTemplate(id string, t entities.TemplateName) bool {
	s.mu.Lock()
	slide, ok := s.deck.SlideByID(id)
	if !ok {
		s.mu.Unlock()
		s.ignored("set template", id)
		return false
	}

	merged, ok := s.schema.MergeContent(t, slide.Content)
	if !ok {
		s.mu.Unlock()
		s.log.Debug("set template ignored: unknown template", zap.String("id", id), zap.String("template", string(t)))
		return false
	}

	slide.Template = t
	slide.Content = merged
	s.log.Debug("slide template changed", zap.String("id", id), zap.String("template", string(t)))
	s.commit()

	return true
}

// SetTheme replaces the theme identifier; unknown themes are stored as given
func (s *DeckStore) SetTheme(theme string) {
	s.mu.Lock()
	s.deck.Theme = theme
	s.log.Debug("theme changed", zap.String("theme", theme))
	s.commit()
}

// SetDeckName replaces the deck's display name
func (s *DeckStore) SetDeckName(name string) {
	s.mu.Lock()
	s.deck.Name = name
	s.log.Debug("deck renamed", zap.String("name", name))
	s.commit()
}

// LoadState replaces the whole deck with a copy of snapshot. A snapshot without a
// slide sequence is rejected and leaves the deck untouched. Content is restricted
// to each slide's schema and the active slide repaired when it is dangling.
func (s *DeckStore) LoadState(snapshot *entities.Deck) error {
	if snapshot == nil || snapshot.Slides == nil {
		return &entities.SnapshotError{Reason: "deck has no slide sequence", Cause: entities.ErrMissingSlides}
	}

	next := snapshot.Clone()
	for i := range next.Slides {
		next.Slides[i].Content = s.schema.NormalizeContent(next.Slides[i].Template, next.Slides[i].Content)
	}
	next.RepairActive()

	s.mu.Lock()
	s.deck = next
	s.log.Debug("state loaded", zap.Int("slides", len(next.Slides)), zap.String("active", next.ActiveSlideID))
	s.commit()

	return nil
}

// commit snapshots the deck, releases the lock taken by the caller and notifies
// every listener in subscription order. Notifications of concurrent commits are
// delivered in the order the mutations were applied.
func (s *DeckStore) commit() {
	s.seq++
	seq := s.seq
	snapshot := s.deck.Clone()
	s.mu.Unlock()

	s.notifyMu.Lock()
	for s.notified+1 != seq {
		s.turn.Wait()
	}
	defer func() {
		s.notified = seq
		s.turn.Broadcast()
		s.notifyMu.Unlock()
	}()

	s.subMu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.listener(snapshot.Clone())
	}
}

func (s *DeckStore) ignored(op, id string) {
	s.log.Debug(op+" ignored: slide not found", zap.String("id", id))
}

func insertSlide(slides []entities.Slide, pos int, slide entities.Slide) []entities.Slide {
	out := make([]entities.Slide, 0, len(slides)+1)
	out = append(out, slides[:pos]...)
	out = append(out, slide)
	return append(out, slides[pos:]...)
}
