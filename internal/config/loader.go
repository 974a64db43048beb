package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

func (m *Manager) load() error {
	if m.configPath == "" {
		return os.ErrNotExist
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	fc := defaultFileConfig()
	ext := strings.ToLower(filepath.Ext(m.configPath))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse YAML config: %w", err)
		}
	default:
		if yerr := yaml.Unmarshal(data, &fc); yerr != nil {
			if jerr := json.Unmarshal(data, &fc); jerr != nil {
				return fmt.Errorf("parse config file (tried YAML and JSON): %w", yerr)
			}
		}
	}

	if info, err := os.Stat(m.configPath); err == nil {
		m.lastMod = info.ModTime()
	}

	m.file = &fc
	log.WithField("path", m.configPath).Info("configuration loaded")
	return nil
}

func (m *Manager) save() error {
	if m.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(m.configPath)) == ".json" {
		data, err = json.MarshalIndent(m.file, "", "  ")
	} else {
		data, err = yaml.Marshal(m.file)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if info, err := os.Stat(m.configPath); err == nil {
		m.lastMod = info.ModTime()
	}

	log.WithField("path", m.configPath).Info("configuration saved")
	return nil
}
