package toolchain

import (
	"fmt"
	"sort"
	"sync"

	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

var _ secondary.AdapterSet = (*Set)(nil)

// Set is the language registry consulted by the execution service.
type Set struct {
	mu       sync.RWMutex
	adapters map[domain.Language]secondary.LanguageAdapter
}

func NewSet(adapters ...secondary.LanguageAdapter) *Set {
	s := &Set{adapters: make(map[domain.Language]secondary.LanguageAdapter, len(adapters))}
	for _, a := range adapters {
		s.Register(a)
	}
	return s
}

// NewDefaultSet registers the four built-in languages.
func NewDefaultSet(cfg *config.ExecutorConfig, logger primary.Logger) *Set {
	return NewSet(
		NewCppAdapter(cfg, logger),
		NewPythonAdapter(cfg, logger),
		NewJavaScriptAdapter(cfg, logger),
		NewJavaAdapter(cfg, logger),
	)
}

// Register adds or replaces the adapter for its language.
func (s *Set) Register(adapter secondary.LanguageAdapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapters[adapter.Language()] = adapter
}

func (s *Set) Adapter(language domain.Language) (secondary.LanguageAdapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	adapter, ok := s.adapters[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedLanguage, language)
	}
	return adapter, nil
}

// Languages lists the registered languages in a stable order.
func (s *Set) Languages() []domain.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Language, 0, len(s.adapters))
	for l := range s.adapters {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
