package dotdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	chatsDirName  = "chats"
	audioDirName  = "audio"
	imagesDirName = "images"
	factsFileName = "facts.json"
)

// ErrChatExists is returned when renaming a chat onto an existing name.
var ErrChatExists = errors.New("chat already exists")

// Chats manages per-backend chat folders under the .hearth/ directory.
// Layout:
//
//	.hearth/chats/<backend>/<name>/<name>.json   conversation file
//	.hearth/chats/<backend>/<name>/facts.json    facts sidecar
//	.hearth/chats/<backend>/<name>/audio/        TTS output for this chat
//	.hearth/chats/<backend>/<name>/images/       generated images for this chat
type Chats struct {
	root    string
	backend string
}

// NewChats resolves the chats root for the given backend identifier
// (e.g. "ollama", "llama-server"). If overrideDir is non-empty it is used
// instead of the default .hearth/ location.
func (m *Manager) NewChats(backend, overrideDir string) (*Chats, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	root := filepath.Join(target, chatsDirName, backend)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating chats directory %s: %w", root, err)
	}

	return &Chats{root: root, backend: backend}, nil
}

// Backend returns the backend identifier this chat tree belongs to.
func (c *Chats) Backend() string {
	return c.backend
}

// Ensure creates the folder structure for the named chat and returns its path.
func (c *Chats) Ensure(name string) (string, error) {
	dir := filepath.Join(c.root, name)
	for _, sub := range []string{dir, filepath.Join(dir, audioDirName), filepath.Join(dir, imagesDirName)} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return "", fmt.Errorf("creating chat folder %s: %w", sub, err)
		}
	}
	return dir, nil
}

// ConversationFile returns the path to the named chat's conversation JSON,
// creating the folder structure if needed.
func (c *Chats) ConversationFile(name string) (string, error) {
	dir, err := c.Ensure(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// FactsFile returns the path to the named chat's facts sidecar, creating the
// folder structure if needed.
func (c *Chats) FactsFile(name string) (string, error) {
	dir, err := c.Ensure(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, factsFileName), nil
}

// AudioDir returns the named chat's audio folder.
func (c *Chats) AudioDir(name string) (string, error) {
	dir, err := c.Ensure(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, audioDirName), nil
}

// ImagesDir returns the named chat's images folder.
func (c *Chats) ImagesDir(name string) (string, error) {
	dir, err := c.Ensure(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, imagesDirName), nil
}

// List returns the sorted names of all chats for this backend.
func (c *Chats) List() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing chats: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// Rename moves a chat folder and its conversation file to a new name.
// Returns ErrChatExists if the destination name is taken.
func (c *Chats) Rename(oldName, newName string) error {
	oldDir := filepath.Join(c.root, oldName)
	newDir := filepath.Join(c.root, newName)

	if _, err := os.Stat(newDir); err == nil {
		return fmt.Errorf("%w: %s", ErrChatExists, newName)
	}

	if err := os.Rename(oldDir, newDir); err != nil {
		return fmt.Errorf("renaming chat %s: %w", oldName, err)
	}

	// The conversation file is named after the chat; move it along.
	oldJSON := filepath.Join(newDir, oldName+".json")
	newJSON := filepath.Join(newDir, newName+".json")
	if _, err := os.Stat(oldJSON); err == nil {
		if err := os.Rename(oldJSON, newJSON); err != nil {
			return fmt.Errorf("renaming conversation file: %w", err)
		}
	}

	return nil
}

// New creates a fresh chat, removing any existing conversation file under the
// same name. The facts sidecar and media folders are left untouched.
func (c *Chats) New(name string) (string, error) {
	dir, err := c.Ensure(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name+".json")
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("clearing conversation file: %w", err)
	}

	return dir, nil
}

// ConversationSize returns the size in bytes of the named chat's conversation
// file only (media folders excluded). Missing files count as zero.
func (c *Chats) ConversationSize(name string) int64 {
	info, err := os.Stat(filepath.Join(c.root, name, name+".json"))
	if err != nil {
		return 0
	}
	return info.Size()
}

// FormatSize renders a byte count as a human readable size.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
