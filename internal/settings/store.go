// Package settings persists small site settings in a JSON file: currently
// the markdown notice shown on the manager dashboard.
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const defaultDashboardNotice = "Manager dashboard coming soon.\n\n" +
	"Here you will be able to see charts and metrics based on the data " +
	"collected by Process Controllers."

type Settings struct {
	UpdatedAt time.Time `json:"updated_at"`
	// DashboardNotice is the markdown shown on the Manager Dashboard page.
	DashboardNotice string `json:"dashboard_notice,omitempty"`
}

type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Ensure creates the backing directory and a default settings file if missing.
func (s *Store) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.saveLocked(Settings{
				UpdatedAt:       time.Now().UTC(),
				DashboardNotice: defaultDashboardNotice,
			})
		}
		return err
	}
	return nil
}

func (s *Store) Get() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked()
}

// SetDashboardNotice stores the markdown shown on the manager dashboard.
func (s *Store) SetDashboardNotice(md string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, _ := s.getLocked()
	st.DashboardNotice = md
	st.UpdatedAt = time.Now().UTC()
	return s.saveLocked(st)
}

func (s *Store) getLocked() (Settings, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{DashboardNotice: defaultDashboardNotice}, nil
		}
		return Settings{}, err
	}
	if len(b) == 0 {
		return Settings{DashboardNotice: defaultDashboardNotice}, nil
	}
	var st Settings
	if err := json.Unmarshal(b, &st); err != nil {
		return Settings{}, err
	}
	if st.DashboardNotice == "" {
		st.DashboardNotice = defaultDashboardNotice
	}
	return st, nil
}

func (s *Store) saveLocked(st Settings) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
