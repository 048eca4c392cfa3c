package persistance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"geepr/internal/domain/pullrequest"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/exp/slices"
)

const DefaultStatePath = "~/.config/geepr/state"

// state maps repository -> pull request -> sorted viewed paths.
type state struct {
	Viewed map[string]map[string][]string `json:"viewed,omitempty"`
}

// XDGPersistanceRepo keeps local state in a JSON file. Every call reads
// the file so that several geepr processes see each other's marks.
type XDGPersistanceRepo struct {
	path string

	mu sync.Mutex
}

func New(path string) (*XDGPersistanceRepo, error) {
	if path == "" {
		path = DefaultStatePath
	}

	p, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	return &XDGPersistanceRepo{path: p}, nil
}

func (repo *XDGPersistanceRepo) createConfigDirIfNotExist() error {
	return os.MkdirAll(filepath.Dir(repo.path), 0700)
}

func (repo *XDGPersistanceRepo) load() (*state, error) {
	s := &state{}
	data, err := os.ReadFile(repo.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(data, s)
	if err != nil {
		return nil, fmt.Errorf("cannot load state file: %v", err)
	}

	return s, nil
}

func (repo *XDGPersistanceRepo) save(s *state) error {
	err := repo.createConfigDirIfNotExist()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(repo.path, data, 0600)
}

func (repo *XDGPersistanceRepo) getViewed(repository string, id pullrequest.EntityID) (pullrequest.ViewedState, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	s, err := repo.load()
	if err != nil {
		return nil, err
	}

	vs := pullrequest.ViewedState{}
	for _, path := range s.Viewed[repository][string(id)] {
		vs[path] = true
	}

	return vs, nil
}

func (repo *XDGPersistanceRepo) setViewed(repository string, id pullrequest.EntityID, path string, viewed bool) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	s, err := repo.load()
	if err != nil {
		return err
	}
	if s.Viewed == nil {
		s.Viewed = map[string]map[string][]string{}
	}
	if s.Viewed[repository] == nil {
		s.Viewed[repository] = map[string][]string{}
	}

	paths := s.Viewed[repository][string(id)]
	index := slices.Index(paths, path)
	switch {
	case viewed && index == -1:
		paths = append(paths, path)
		slices.Sort(paths)
	case !viewed && index != -1:
		paths = slices.Delete(paths, index, index+1)
	default:
		return nil
	}

	if len(paths) == 0 {
		delete(s.Viewed[repository], string(id))
	} else {
		s.Viewed[repository][string(id)] = paths
	}
	if len(s.Viewed[repository]) == 0 {
		delete(s.Viewed, repository)
	}

	return repo.save(s)
}

// ForRepository returns the viewed store of one repository.
func (repo *XDGPersistanceRepo) ForRepository(name string) pullrequest.ViewedStore {
	return &viewedStore{repo: repo, repository: name}
}

type viewedStore struct {
	repo       *XDGPersistanceRepo
	repository string
}

func (s *viewedStore) GetViewed(id pullrequest.EntityID) (pullrequest.ViewedState, error) {
	return s.repo.getViewed(s.repository, id)
}

func (s *viewedStore) SetViewed(id pullrequest.EntityID, path string, viewed bool) error {
	return s.repo.setViewed(s.repository, id, path, viewed)
}
