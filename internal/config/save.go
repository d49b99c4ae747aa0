package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# manor configuration\n"

// SavePath is where Save writes: the --config path when given, otherwise
// config.yaml in the user's config directory.
func SavePath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	return filepath.Join(ConfigDir(), configFileName)
}

// Save writes the effective config to SavePath and returns the path used.
func (c *Config) Save() (string, error) {
	path := SavePath()
	return path, c.SaveTo(path)
}

// SaveTo writes the config to path. The file is replaced atomically so a
// running watcher never sees a partial write.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
