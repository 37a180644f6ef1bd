package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jrsteele09/swiftchat-web/internal/utils"
	"gopkg.in/yaml.v3"
)

var (
	fileLock   sync.RWMutex
	fileValues = map[string]string{}
)

// LoadFile reads a YAML file of VARIABLE: value pairs that back GetEnv when the
// process environment does not set a variable. Keys are matched case-insensitively
// and lists are joined with commas, e.g.
//
//	api_base_url: https://api.swiftchat.example
//	allowed_origins: [https://swiftchat.example]
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("[config LoadFile] read %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("[config LoadFile] parse %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(k)
		switch typed := v.(type) {
		case nil:
			continue
		case []any:
			values[key] = strings.Join(utils.ToStringSlice(typed), ",")
		default:
			values[key] = fmt.Sprint(typed)
		}
	}

	fileLock.Lock()
	fileValues = values
	fileLock.Unlock()
	return nil
}

// ResetFile forgets any values loaded by LoadFile
func ResetFile() {
	fileLock.Lock()
	fileValues = map[string]string{}
	fileLock.Unlock()
}

func fileValue(envVar string) (string, bool) {
	fileLock.RLock()
	defer fileLock.RUnlock()
	v, ok := fileValues[envVar]
	return v, ok
}
