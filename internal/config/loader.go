package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "surfacegen.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "surfacegen.yml"

// LoadFromDir loads the ProjectConfig of the config file in dir, with
// defaults applied and paths left as written. Returns nil, nil if dir holds
// no config file.
func LoadFromDir(dir string) (*ProjectConfig, error) {
	configPath := FindConfigFile(dir)
	if configPath == "" {
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "reading %s", configPath)
	}
	if err := CheckKeySpelling(k.Keys()); err != nil {
		return nil, errors.Wrapf(err, "in %s", configPath)
	}

	var cfg ProjectConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", configPath)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// CheckKeySpelling rejects keys written with dashes where the project key
// uses underscores, as in "source-dir" for "source_dir". Such keys would
// otherwise be ignored silently.
func CheckKeySpelling(keys []string) error {
	known := projectKeys()
	for _, key := range keys {
		top, _, _ := strings.Cut(key, ".")
		if !strings.Contains(top, "-") {
			continue
		}
		if want := strings.ReplaceAll(top, "-", "_"); known[want] {
			return errors.Newf("unknown key %q, did you mean %q?", top, want)
		}
	}
	return nil
}

func projectKeys() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(ProjectConfig{})
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = true
		}
	}
	return keys
}

// FindConfigFile returns the config file in dir, or "" if there is none.
func FindConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir, at most maxLevels directories,
// to the first directory holding a config file. Returns "" if there is none.
func FindProjectRoot(startDir string, maxLevels int) string {
	dir := startDir
	for range maxLevels {
		if FindConfigFile(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}
