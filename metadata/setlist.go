package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gigmaster/model"
)

// errBadSetlist marks a setlist file that is not a setlist document.
// Such files are hidden from the listing and read as not found.
var errBadSetlist = errors.New("bad setlist file")

// setlistDocument is a setlist file on disk. The id is the file name.
type setlistDocument struct {
	Name  string   `json:"name"`
	Songs []string `json:"songs"`
}

func (s *Store) readSetlistFile(path string) (*model.Setlist, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc setlistDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadSetlist, err)
	}
	if doc.Songs == nil {
		doc.Songs = []string{}
	}

	return &model.Setlist{
		ID:    filepath.Base(path),
		Name:  doc.Name,
		Songs: doc.Songs,
	}, nil
}

func (s *Store) writeSetlistFile(path string, setlist *model.Setlist) error {
	b, err := json.MarshalIndent(setlistDocument{Name: setlist.Name, Songs: setlist.Songs}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ListSetlists returns all the setlists ordered by id.
//
// Files that can not be read or parsed are skipped.
func (s *Store) ListSetlists() ([]model.Setlist, error) {
	entries, err := os.ReadDir(s.layout.SetlistsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Setlist{}, nil
		}
		return nil, fmt.Errorf("ListSetlists: ReadDir failed: %w", err)
	}

	setlists := make([]model.Setlist, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != model.SetlistExt {
			continue
		}
		setlist, err := s.readSetlistFile(filepath.Join(s.layout.SetlistsDir(), e.Name()))
		if err != nil {
			logger.WithField("setlist", e.Name()).WithError(err).
				Warn("ListSetlists: skip unreadable setlist")
			continue
		}
		setlists = append(setlists, *setlist)
	}

	sort.Slice(setlists, func(i, j int) bool { return setlists[i].ID < setlists[j].ID })
	return setlists, nil
}

func (s *Store) ReadSetlist(id string) (*model.Setlist, error) {
	p, err := s.ResolveSetlist(id)
	if err != nil {
		return nil, err
	}

	setlist, err := s.readSetlistFile(p)
	if errors.Is(err, errBadSetlist) {
		logger.WithField("setlist", id).WithError(err).Warn("ReadSetlist: unreadable setlist")
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, errBadSetlist) {
		return nil, fmt.Errorf("%w: setlist %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("ReadSetlist: %w", err)
	}
	return setlist, nil
}

// CreateSetlist writes a new, empty setlist named name.
// It fails with ErrConflict if the derived id is taken.
func (s *Store) CreateSetlist(name string) (*model.Setlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: setlist name is required", ErrInvalid)
	}

	id := model.DeriveID(name, model.SetlistExt)
	p, err := s.ResolveSetlist(id)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: setlist %s", ErrConflict, id)
	}

	setlist := &model.Setlist{ID: id, Name: name, Songs: []string{}}
	if err := s.writeSetlistFile(p, setlist); err != nil {
		return nil, fmt.Errorf("CreateSetlist: write failed: %w", err)
	}

	logger.WithField("setlist", id).Info("CreateSetlist: success")
	return setlist, nil
}

// ReplaceSetlistSongs replaces the songs of an existing setlist.
// The song ids are not checked against the library.
func (s *Store) ReplaceSetlistSongs(id string, songs []string) (*model.Setlist, error) {
	setlist, err := s.ReadSetlist(id)
	if err != nil {
		return nil, err
	}

	if songs == nil {
		songs = []string{}
	}
	setlist.Songs = songs

	if err := s.writeSetlistFile(s.layout.SetlistPath(setlist.ID), setlist); err != nil {
		return nil, fmt.Errorf("ReplaceSetlistSongs: write failed: %w", err)
	}
	return setlist, nil
}

// DeleteSetlist removes the setlist file. A missing file is not an error.
func (s *Store) DeleteSetlist(id string) error {
	p, err := s.ResolveSetlist(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("DeleteSetlist: Remove failed: %w", err)
	}
	return nil
}
