package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
)

// Preference keys.
const (
	KeyAuthToken = "authToken"
	KeyUsername  = "username"
	KeyTheme     = "theme"
)

// Prefs is a small durable key-value store kept in a JSON file.
type Prefs struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// OpenPrefs loads the file at path. A missing file is an empty store.
func OpenPrefs(path string) (*Prefs, error) {
	p := &Prefs{path: path, values: map[string]string{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := sonic.Unmarshal(data, &p.values); err != nil {
			return nil, err
		}
	}
	if p.values == nil {
		p.values = map[string]string{}
	}
	return p, nil
}

// DefaultPrefsPath is $XDG_CONFIG_HOME/taskpad/prefs.json or its platform equivalent.
func DefaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "taskpad", "prefs.json")
}

func (p *Prefs) Get(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[key]
}

func (p *Prefs) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return p.save()
}

func (p *Prefs) Delete(keys ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		delete(p.values, k)
	}
	return p.save()
}

// save writes a temp file and renames it over the old one.
func (p *Prefs) save() error {
	if p.path == "" {
		return nil
	}
	data, err := sonic.ConfigStd.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".prefs-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}
