package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"whale-content-station/internal/model"
)

// Group is one named batch of reference identifiers (e.g. mascots, examples).
type Group struct {
	Name string
	IDs  []string
}

const fetchConcurrency = 4

// Store holds the mutable ordered collection of reference assets. Defaults
// keep their fetch order at the tail; operator uploads are prepended.
type Store struct {
	mu       sync.Mutex
	assets   []model.Asset
	loaded   bool
	progress string
	fetcher  Fetcher
	groups   []Group
	log      zerolog.Logger
}

func New(fetcher Fetcher, groups []Group, log zerolog.Logger) *Store {
	return &Store{
		fetcher:  fetcher,
		groups:   groups,
		progress: "กำลังเชื่อมต่อคลังภาพ...",
		log:      log,
	}
}

// Load fetches every configured default group. The load is best effort: a
// failed identifier is logged and skipped, never surfaced as an aggregate
// error. onProgress receives operator-facing progress text per group.
func (s *Store) Load(ctx context.Context, onProgress func(string)) {
	for _, group := range s.groups {
		s.setProgress(fmt.Sprintf("กำลังโหลดชุด %s (%d รูป)...", group.Name, len(group.IDs)), onProgress)

		results := make([]*Fetched, len(group.IDs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(fetchConcurrency)
		for i, id := range group.IDs {
			g.Go(func() error {
				fetched, err := s.fetcher.Fetch(gctx, id)
				if err != nil {
					s.log.Warn().Str("group", group.Name).Str("id", id).Err(err).Msg("reference asset skipped")
					return nil
				}
				results[i] = fetched
				return nil
			})
		}
		_ = g.Wait()

		s.mu.Lock()
		n := 0
		for _, fetched := range results {
			if fetched == nil {
				continue
			}
			n++
			s.assets = append(s.assets, model.Asset{
				ID:        uuid.NewString(),
				Name:      fmt.Sprintf("%s-%d%s", group.Name, n, extForMIME(fetched.MIME)),
				MIME:      fetched.MIME,
				Data:      fetched.Data,
				SourceURL: fetched.URL,
				IsDefault: true,
			})
		}
		s.mu.Unlock()
		s.log.Info().Str("group", group.Name).Int("loaded", n).Int("requested", len(group.IDs)).Msg("reference group loaded")
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
	s.setProgress("พร้อมใช้งาน", onProgress)
}

// Add prepends an operator upload so the newest reference sits first.
func (s *Store) Add(name, mime string, data []byte) model.Asset {
	id := uuid.NewString()
	asset := model.Asset{
		ID:        id,
		Name:      name,
		MIME:      mime,
		Data:      data,
		SourceURL: "/api/assets/" + id + "/raw",
		IsDefault: false,
	}
	s.mu.Lock()
	s.assets = append([]model.Asset{asset}, s.assets...)
	s.mu.Unlock()
	return asset
}

// Remove deletes the asset with the given id. Removing an unknown id is a
// no-op, not an error.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.assets {
		if a.ID == id {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the asset with the given id.
func (s *Store) Get(id string) (model.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assets {
		if a.ID == id {
			return a, true
		}
	}
	return model.Asset{}, false
}

// Snapshot copies the collection as it exists right now. An in-flight
// synthesis keeps the snapshot it was given regardless of later mutation.
func (s *Store) Snapshot() []model.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// List is the presentation-facing read; same copy semantics as Snapshot.
func (s *Store) List() []model.Asset {
	return s.Snapshot()
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Store) Progress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Store) setProgress(msg string, onProgress func(string)) {
	s.mu.Lock()
	s.progress = msg
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(msg)
	}
}

func extForMIME(mime string) string {
	switch {
	case strings.Contains(mime, "jpeg"), strings.Contains(mime, "jpg"):
		return ".jpg"
	case strings.Contains(mime, "webp"):
		return ".webp"
	default:
		return ".png"
	}
}
