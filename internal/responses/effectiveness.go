package responses

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/equilibra/pkg/logging"
)

// Record is the running score of one reply for one symptom.
type Record struct {
	TotalScore float64   `json:"totalScore"`
	TimesUsed  int       `json:"timesUsed"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// Mean is the ranking signal. Always derived, never stored.
func (r Record) Mean() float64 {
	if r.TimesUsed <= 0 {
		return 0
	}
	return r.TotalScore / float64(r.TimesUsed)
}

// Document is the persisted layout: symptom -> reply text -> record.
type Document map[string]map[string]Record

func (d Document) clone() Document {
	out := make(Document, len(d))
	for symptom, replies := range d {
		inner := make(map[string]Record, len(replies))
		for text, rec := range replies {
			inner[text] = rec
		}
		out[symptom] = inner
	}
	return out
}

// Persister stores the whole document. Load returns an empty document when
// nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// Updater is a Persister shared by several processes. Update runs fn against
// the latest stored document and, when fn reports a change, stores the result
// atomically. The returned document is what was stored or read.
type Updater interface {
	Persister
	Update(ctx context.Context, fn func(Document) bool) (Document, error)
}

// Ranked is a reply with its derived mean.
type Ranked struct {
	Text       string
	Mean       float64
	TimesUsed  int
	LastUsedAt time.Time
}

// StoreConfig tunes ranking and pruning.
type StoreConfig struct {
	// Recency hides replies used more recently than this from BestFor.
	Recency time.Duration
	// Retention drops records not used within this window.
	Retention time.Duration
	// SingleUseGrace drops records used only once after this long.
	SingleUseGrace time.Duration
	Now            func() time.Time
}

func (c StoreConfig) withDefaults() StoreConfig {
	if c.Recency <= 0 {
		c.Recency = time.Hour
	}
	if c.Retention <= 0 {
		c.Retention = 30 * 24 * time.Hour
	}
	if c.SingleUseGrace <= 0 {
		c.SingleUseGrace = 24 * time.Hour
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// EffectivenessStore tracks which replies preceded engaged user messages.
// One mutex covers every read-modify-persist cycle.
type EffectivenessStore struct {
	mu        sync.Mutex
	doc       Document
	persister Persister
	cfg       StoreConfig
	logger    *logging.Logger
}

// NewEffectivenessStore loads the persisted document. An unreadable document
// is logged and replaced by an empty one.
func NewEffectivenessStore(ctx context.Context, p Persister, cfg StoreConfig, logger *logging.Logger) *EffectivenessStore {
	if p == nil {
		panic("responses: persister cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	doc, err := p.Load(ctx)
	if err != nil {
		logger.Warn("effectiveness document unreadable, starting empty", "error", err)
		doc = nil
	}
	if doc == nil {
		doc = Document{}
	}
	return &EffectivenessStore{doc: doc, persister: p, cfg: cfg.withDefaults(), logger: logger}
}

// Record adds one engagement observation for (symptom, text) and persists.
// The in-memory update survives a failed save.
func (s *EffectivenessStore) Record(ctx context.Context, symptom, text string, engagement float64) error {
	symptom, text = strings.TrimSpace(symptom), strings.TrimSpace(text)
	if symptom == "" || text == "" {
		return errors.New("responses: symptom and text are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Now()
	observe := func(doc Document) bool {
		replies := doc[symptom]
		if replies == nil {
			replies = make(map[string]Record)
			doc[symptom] = replies
		}
		rec := replies[text]
		rec.TotalScore += engagement
		rec.TimesUsed++
		rec.LastUsedAt = now
		replies[text] = rec
		return true
	}
	observe(s.doc)
	return s.persistLocked(ctx, observe)
}

// Ranked returns every reply for symptom, best mean first.
func (s *EffectivenessStore) Ranked(symptom string) []Ranked {
	s.mu.Lock()
	defer s.mu.Unlock()

	replies := s.doc[strings.TrimSpace(symptom)]
	out := make([]Ranked, 0, len(replies))
	for text, rec := range replies {
		out = append(out, Ranked{Text: text, Mean: rec.Mean(), TimesUsed: rec.TimesUsed, LastUsedAt: rec.LastUsedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		if out[i].TimesUsed != out[j].TimesUsed {
			return out[i].TimesUsed > out[j].TimesUsed
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// BestFor returns the highest-mean reply not used within the recency window.
func (s *EffectivenessStore) BestFor(symptom string) (string, bool) {
	now := s.cfg.Now()
	for _, r := range s.Ranked(symptom) {
		if now.Sub(r.LastUsedAt) < s.cfg.Recency {
			continue
		}
		return r.Text, true
	}
	return "", false
}

// Prune drops stale and single-use records and persists if anything changed.
// With a shared persister the stored document is pruned too, and the count
// reflects what was removed there.
func (s *EffectivenessStore) Prune(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Now()
	removed := 0
	prune := func(doc Document) bool {
		removed = s.pruneDoc(doc, now)
		return removed > 0
	}
	if _, shared := s.persister.(Updater); !shared && !prune(s.doc) {
		return 0, nil
	}
	return removed, s.persistLocked(ctx, prune)
}

func (s *EffectivenessStore) pruneDoc(doc Document, now time.Time) int {
	removed := 0
	for symptom, replies := range doc {
		for text, rec := range replies {
			age := now.Sub(rec.LastUsedAt)
			if age > s.cfg.Retention || (rec.TimesUsed < 2 && age > s.cfg.SingleUseGrace) {
				delete(replies, text)
				removed++
			}
		}
		if len(replies) == 0 {
			delete(doc, symptom)
		}
	}
	return removed
}

// Snapshot returns a deep copy of the document.
func (s *EffectivenessStore) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.clone()
}

// persistLocked saves the document. A shared persister gets the change
// itself, so records written by other processes are merged rather than
// overwritten, and the merged document replaces the local copy.
func (s *EffectivenessStore) persistLocked(ctx context.Context, change func(Document) bool) error {
	if u, ok := s.persister.(Updater); ok {
		merged, err := u.Update(ctx, change)
		if err != nil {
			return fmt.Errorf("responses: persist effectiveness: %w", err)
		}
		if merged == nil {
			merged = Document{}
		}
		s.doc = merged
		return nil
	}
	if err := s.persister.Save(ctx, s.doc); err != nil {
		return fmt.Errorf("responses: persist effectiveness: %w", err)
	}
	return nil
}
