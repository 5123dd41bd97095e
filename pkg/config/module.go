package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

// The deck has to cover every hand and the starter.
const deckSize = 108

var ErrInvalidConfig = errors.New("invalid config")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func readFile(config *Config, path string) error {
	// Check if this is a valid file
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("does not exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch filepath.Ext(path) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		return decoder.Decode(config)
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		return decoder.Decode(config)
	}

	return fmt.Errorf(
		"not in a valid format",
	)
}

func validPort(port int) bool {
	return port >= 0 && port <= 65535
}

func (c *Config) Validate() error {
	server := c.Server

	if server.Ingress.TCP.Port == 0 || !validPort(server.Ingress.TCP.Port) {
		return invalid("tcp port %d", server.Ingress.TCP.Port)
	}

	if !validPort(server.Ingress.Web.Port) {
		return invalid("web port %d", server.Ingress.Web.Port)
	}

	game := server.Game
	if game.MaxPlayers < 2 || game.MaxPlayers > 4 {
		return invalid("maxPlayers must be between 2 and 4, not %d", game.MaxPlayers)
	}

	// A full table still has to leave the starter and a draw pile behind.
	if game.HandSize < 1 || game.HandSize*game.MaxPlayers+5 > deckSize {
		return invalid("hand size %d", game.HandSize)
	}

	if game.WinningScore < 1 {
		return invalid("winning score %d", game.WinningScore)
	}

	if server.MessagesPerSecond < 1 {
		return invalid("messagesPerSecond %d", server.MessagesPerSecond)
	}

	return nil
}

// Process reads the provided configuration files in order on top of the
// default configuration, then validates the result. Fields a file does not
// mention keep their previous value.
func Process(configPaths []string) (*Config, error) {
	config := Config{}
	err := yaml.Unmarshal(DEFAULT, &config)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid default config file: %v",
			err,
		)
	}

	for _, path := range configPaths {
		err := readFile(&config, path)
		if err != nil {
			return nil, fmt.Errorf(
				"could not process config file %s: %w",
				path,
				err,
			)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
