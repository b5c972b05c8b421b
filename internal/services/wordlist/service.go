package wordlist

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/medge/codewords/internal/dependencies/random"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/storage"
)

// Service provides the word pools that boards are dealt from, and the
// language charset check applied to clue words
type Service struct {
	storage storage.Storage

	mu    sync.RWMutex
	words map[model.Mode][]string
}

// New creates a new wordlist Service
func New(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
		words:   make(map[model.Mode][]string),
	}
}

// LoadFromStorage loads a mode's words from storage
func (s *Service) LoadFromStorage(ctx context.Context, mode model.Mode) error {
	words, err := s.storage.GetWordlist(ctx, mode)
	if err != nil {
		return err
	}
	return s.loadWords(mode, words)
}

// LoadFromFile loads a mode's words from a file (one word per line)
func (s *Service) LoadFromFile(ctx context.Context, mode model.Mode, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.storage.SaveWordlist(ctx, mode, words); err != nil {
		return err
	}

	return s.loadWords(mode, words)
}

// LoadWords loads a mode's words directly (used in tests)
func (s *Service) LoadWords(mode model.Mode, words []string) error {
	return s.loadWords(mode, words)
}

func (s *Service) loadWords(mode model.Mode, words []string) error {
	normalized := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		normalized = append(normalized, w)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.words[mode] = normalized
	return nil
}

// Loaded reports whether a mode has words available
func (s *Service) Loaded(mode model.Mode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words[mode]) > 0
}

// WordCount returns the number of words loaded for a mode
func (s *Service) WordCount(mode model.Mode) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words[mode])
}

// Deal returns n distinct random words for a mode
func (s *Service) Deal(mode model.Mode, n int, rnd random.Random) ([]string, error) {
	s.mu.RLock()
	pool := s.words[mode]
	s.mu.RUnlock()

	if len(pool) == 0 {
		return nil, model.ErrWordlistNotLoaded
	}
	if len(pool) < n {
		return nil, model.ErrWordlistInsufficient
	}

	// Partial Fisher-Yates over a copy: the first n positions end up
	// uniformly chosen without replacement
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n], nil
}

// ValidCharset reports whether every rune of a word belongs to the
// mode's alphabet
func ValidCharset(mode model.Mode, word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		switch mode {
		case model.ModeRussian:
			if !unicode.Is(unicode.Cyrillic, r) && r != '-' {
				return false
			}
		default:
			if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && r != '-' {
				return false
			}
		}
	}
	return true
}
