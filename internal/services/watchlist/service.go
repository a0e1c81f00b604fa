// Package watchlist keeps a user-edited list of drug names in a YAML file and
// reloads it when the file changes on disk.
package watchlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/logger"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

// File is the on-disk layout of the watchlist.
type File struct {
	Drugs   []string `yaml:"drugs"`
	Version int      `yaml:"version,omitempty"`
}

// EventType defines the type of watchlist event.
type EventType int

const (
	EventLoaded EventType = iota
	EventChanged
	EventError
)

// Event represents a watchlist service event.
type Event struct {
	Error error
	Drug  string
	Type  EventType
}

// Service manages the watchlist with file watching and change notifications.
type Service struct {
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	filePath      string
	drugs         []string
	mu            sync.RWMutex
	closeOnce     sync.Once
}

// New loads the watchlist at filePath and starts watching it. A missing
// file is created holding seed.
func New(filePath string, seed ...string) (*Service, error) {
	if filePath == "" {
		return nil, fmt.Errorf("watchlist path is empty")
	}

	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, 32),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create watchlist directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load watchlist: %w", err)
		}
		s.drugs = normalizeDrugs(seed)
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create watchlist file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventLoaded})
	return s, nil
}

// Path returns the watchlist file path.
func (s *Service) Path() string {
	return s.filePath
}

// Events returns the event channel for subscribing to watchlist changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Drugs returns a copy of the watched drug names.
func (s *Service) Drugs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.drugs))
	copy(out, s.drugs)
	return out
}

// Contains reports whether drug is watched, ignoring case.
func (s *Service) Contains(drug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.drugs, drug) >= 0
}

// Add appends drug to the watchlist and saves it.
func (s *Service) Add(drug string) error {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return fmt.Errorf("drug name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.drugs, drug) >= 0 {
		return nil
	}
	s.drugs = append(s.drugs, drug)
	if err := s.saveLocked(); err != nil {
		s.drugs = s.drugs[:len(s.drugs)-1]
		return fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.sendEvent(Event{Type: EventChanged, Drug: drug})
	return nil
}

// Remove deletes drug from the watchlist and saves it.
func (s *Service) Remove(drug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.drugs, drug)
	if idx < 0 {
		return fmt.Errorf("drug not in watchlist: %s", drug)
	}

	removed := s.drugs[idx]
	prev := s.drugs
	s.drugs = append(append([]string{}, s.drugs[:idx]...), s.drugs[idx+1:]...)
	if err := s.saveLocked(); err != nil {
		s.drugs = prev
		return fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.sendEvent(Event{Type: EventChanged, Drug: removed})
	return nil
}

// Next returns the drug after current, wrapping around. An unknown or empty
// current yields the first entry. ok is false when the list is empty.
func (s *Service) Next(current string) (string, bool) {
	return s.step(current, 1)
}

// Prev returns the drug before current, wrapping around.
func (s *Service) Prev(current string) (string, bool) {
	return s.step(current, -1)
}

func (s *Service) step(current string, delta int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.drugs)
	if n == 0 {
		return "", false
	}
	idx := indexOf(s.drugs, current)
	if idx < 0 {
		return s.drugs[0], true
	}
	return s.drugs[((idx+delta)%n+n)%n], true
}

func indexOf(drugs []string, drug string) int {
	for i, d := range drugs {
		if models.SameDrug(d, drug) {
			return i
		}
	}
	return -1
}

// normalizeDrugs trims names and drops empty and duplicate entries.
func normalizeDrugs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.TrimSpace(d)
		if d == "" || indexOf(out, d) >= 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

func parseFile(data []byte) ([]string, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist: %w", err)
	}
	return normalizeDrugs(f.Drugs), nil
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	drugs, err := parseFile(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.drugs = drugs
	s.mu.Unlock()
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the watchlist atomically (must hold lock).
func (s *Service) saveLocked() error {
	data, err := yaml.Marshal(File{Drugs: s.drugs, Version: 1})
	if err != nil {
		return fmt.Errorf("failed to marshal watchlist: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// startWatcher watches the parent directory so that editors which replace
// the file are still picked up.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the list after an external edit. Reloads that
// leave the list unchanged, such as our own saves, are not reported.
func (s *Service) handleFileChange() {
	before := s.Drugs()

	if err := s.load(); err != nil {
		if os.IsNotExist(err) {
			return
		}
		logger.Warn("watchlist reload failed", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	if equalDrugs(before, s.Drugs()) {
		return
	}
	logger.Info("watchlist reloaded", "path", s.filePath, "drugs", len(s.Drugs()))
	s.sendEvent(Event{Type: EventChanged})
}

func equalDrugs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sendEvent delivers without blocking, dropping the oldest event when full.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
