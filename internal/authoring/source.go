// Package authoring is a content source that writes practice items for
// curriculum atoms with an LLM provider.
package authoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
	"github.com/saideep-g/blue-ninja/internal/llm"
)

// BundlePrefix starts the id of every authored bundle; the rest is the atom id.
const BundlePrefix = "authored-"

// Purpose labels authoring requests in the LLM event log.
const Purpose = "content-authoring"

// Source implements content.Source with one virtual bundle per atom.
// Items are generated on first read and kept for the life of the Source.
type Source struct {
	provider llm.Provider
	graph    *curriculum.Graph
	config   Config
	logger   *zap.Logger
	newID    func() string

	group singleflight.Group
	mu    sync.RWMutex
	items map[string][]content.Item // by atom id
}

// New creates an authoring Source over a curriculum.
func New(provider llm.Provider, graph *curriculum.Graph, cfg Config, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ItemsPerAtom <= 0 {
		cfg.ItemsPerAtom = DefaultConfig().ItemsPerAtom
	}
	return &Source{
		provider: provider,
		graph:    graph,
		config:   cfg,
		logger:   logger.Named("authoring"),
		newID:    uuid.NewString,
		items:    make(map[string][]content.Item),
	}
}

// BundleID returns the authored bundle id for an atom.
func BundleID(atomID string) string {
	return BundlePrefix + atomID
}

func (s *Source) ListBundles(_ context.Context, subject string, grade int) ([]content.Bundle, error) {
	sub := s.graph.ForSubject(subject, grade)

	var out []content.Bundle
	for _, m := range sub.Modules() {
		for _, a := range sub.ModuleAtoms(m.ID) {
			out = append(out, content.Bundle{
				ID:        BundleID(a.ID),
				Subject:   m.Subject,
				Grade:     m.Grade,
				Title:     a.Title,
				ItemCount: s.cachedCount(a.ID),
			})
		}
	}
	return out, nil
}

func (s *Source) BundleDetail(ctx context.Context, bundleID string) ([]content.Item, error) {
	atomID, ok := strings.CutPrefix(bundleID, BundlePrefix)
	if !ok || !s.graph.HasAtom(atomID) {
		return nil, fmt.Errorf("%w: %s", content.ErrBundleNotFound, bundleID)
	}
	return s.atomItems(ctx, atomID)
}

// QueryBySubjectAndGrade authors every atom for the subject in turn. A
// failing atom is logged and skipped.
func (s *Source) QueryBySubjectAndGrade(ctx context.Context, subject string, grade int) ([]content.Item, error) {
	var out []content.Item
	for _, a := range s.graph.ForSubject(subject, grade).Atoms() {
		items, err := s.atomItems(ctx, a.ID)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			s.logger.Warn("authoring atom failed", zap.String("atom", a.ID), zap.Error(err))
			continue
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *Source) cachedCount(atomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items[atomID])
}

// atomItems returns the cached items for an atom, generating them once
// when concurrent callers ask for the same atom.
func (s *Source) atomItems(ctx context.Context, atomID string) ([]content.Item, error) {
	s.mu.RLock()
	cached, ok := s.items[atomID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(atomID, func() (any, error) {
		s.mu.RLock()
		cached, ok := s.items[atomID]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}

		items, err := s.Generate(ctx, atomID, nil)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.items[atomID] = items
		s.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]content.Item), nil
}

// Generate asks the provider for a fresh set of items for one atom.
// prior lists prompts the provider should not repeat. Items that fail
// validation are logged and dropped; an empty result is an error.
func (s *Source) Generate(ctx context.Context, atomID string, prior []string) ([]content.Item, error) {
	atom, err := s.graph.Atom(atomID)
	if err != nil {
		return nil, err
	}
	module, err := s.graph.Module(atom.ModuleID)
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		Purpose:     Purpose,
		AtomID:      atomID,
		System:      systemPrompt,
		Prompt:      buildUserMessage(atom, module, s.config.ItemsPerAtom, prior),
		Schema:      ItemsSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("authoring %s: %w", atomID, err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("authoring %s: parse response: %w", atomID, err)
	}

	seen := make(map[string]bool, len(prior)+len(raw.Items))
	for _, p := range prior {
		seen[normalizePrompt(p)] = true
	}

	var items []content.Item
	for _, out := range raw.Items {
		it := out.toItem(s.newID(), atom, module)
		key := normalizePrompt(it.Prompt)
		if seen[key] {
			s.logger.Debug("dropping repeated prompt", zap.String("atom", atomID))
			continue
		}
		if verr := s.validate(it, atom); verr != nil {
			s.logger.Warn("dropping authored item", zap.String("atom", atomID), zap.Error(verr))
			continue
		}
		seen[key] = true
		items = append(items, it)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("authoring %s: no valid items in response", atomID)
	}
	s.logger.Info("authored items", zap.String("atom", atomID), zap.Int("count", len(items)))
	return items, nil
}

func (s *Source) validate(it content.Item, atom curriculum.Atom) *ValidationError {
	for _, v := range s.config.Validators {
		if verr := v.Validate(it, atom, s.config); verr != nil {
			return verr
		}
	}
	return nil
}

func normalizePrompt(p string) string {
	return strings.Join(strings.Fields(strings.ToLower(p)), " ")
}
