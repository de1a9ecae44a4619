package config

import (
	"context"
	"os"
	"path"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const (
	localDir      = ".rxpipe"
	localFileName = "config.yaml"
)

// localOverridePath returns the full path of the optional local override file.
func localOverridePath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "failed to find home directory")
	}
	return path.Join(home, localDir, localFileName), nil
}

// loadLocalOverrides reads the override file and returns its sections keyed by
// document id. A missing file is not an error, just no overrides.
func loadLocalOverrides() (map[string]map[string]interface{}, error) {
	p, err := localOverridePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read local config file %q", p)
	}
	overrides := make(map[string]map[string]interface{})
	if err := yaml.Unmarshal(b, &overrides); err != nil {
		return nil, errors.Wrapf(err, "failed to parse local config file %q", p)
	}
	return overrides, nil
}

// fetchDoc reads one configuration document and merges the matching local
// override section over its top-level fields.
func fetchDoc(ctx context.Context, store DocReader, collection, doc string) (map[string]interface{}, error) {
	data, err := store.GetConfigDoc(ctx, collection, doc)
	if err != nil {
		return nil, err
	}
	overrides, err := loadLocalOverrides()
	if err != nil {
		return nil, err
	}
	if section, ok := overrides[doc]; ok {
		for k, v := range section {
			data[k] = v
		}
	}
	return data, nil
}
