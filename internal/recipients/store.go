package recipients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"slotbook/internal/domain"
)

// Recipients are the staff addresses told about cancellations.
type Recipients struct {
	DoctorEmail    string `json:"doctorEmail"`
	SecretaryEmail string `json:"secretaryEmail"`
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Store persists Recipients as a JSON document. Until the first Update the
// defaults passed to NewStore are served.
type Store struct {
	fs       afero.Fs
	path     string
	defaults Recipients

	mu sync.RWMutex
}

func NewStore(fs afero.Fs, path string, defaults Recipients) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, path: path, defaults: defaults}
}

func (s *Store) Get(ctx context.Context) (Recipients, error) {
	if err := ctx.Err(); err != nil {
		return Recipients{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.defaults, nil
	}
	if err != nil {
		return Recipients{}, fmt.Errorf("read recipients: %w", err)
	}

	var r Recipients
	if err := json.Unmarshal(data, &r); err != nil {
		return Recipients{}, fmt.Errorf("decode recipients %s: %w", s.path, err)
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, r Recipients) error {
	r.DoctorEmail = strings.TrimSpace(r.DoctorEmail)
	r.SecretaryEmail = strings.TrimSpace(r.SecretaryEmail)
	if r.DoctorEmail == "" || r.SecretaryEmail == "" {
		return &ValidationError{msg: "doctor and secretary email addresses are required"}
	}
	if !domain.ValidEmail(r.DoctorEmail) || !domain.ValidEmail(r.SecretaryEmail) {
		return &ValidationError{msg: "invalid email address format"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create recipients dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write recipients: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace recipients: %w", err)
	}
	return nil
}

// Doctor and Secretary adapt the store to per-role address lookups.
func (s *Store) Doctor(ctx context.Context) (string, error) {
	r, err := s.Get(ctx)
	return r.DoctorEmail, err
}

func (s *Store) Secretary(ctx context.Context) (string, error) {
	r, err := s.Get(ctx)
	return r.SecretaryEmail, err
}
