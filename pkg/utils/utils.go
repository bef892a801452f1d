package utils

import (
	"encoding/json"
	"os"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"

	"rpsgame-deployer/pkg/logging"
)

// ReadJSON reads a JSON file into v
func ReadJSON(filePath string, v any) error {
	logger := logging.WithComponent("utils")

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.Debug().Err(err).Str("path", filePath).Msg("error reading JSON file")
		return eris.Wrapf(err, "read %s", filePath)
	}

	if err := json.Unmarshal(data, v); err != nil {
		logger.Debug().Err(err).Str("path", filePath).Msg("error parsing JSON")
		return eris.Wrapf(err, "parse %s", filePath)
	}

	return nil
}

// LogErrorf logs an error and returns it
func LogErrorf(format string, a ...any) error {
	err := eris.Errorf(format, a...)
	logger := logging.WithComponent("utils")
	logger.Error().Msg(err.Error())
	return err
}

// WriteJSONToFile writes indented JSON to filePath, replacing it atomically.
func WriteJSONToFile(filePath string, data any) error {
	logger := logging.WithComponent("utils")

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return LogErrorf("error marshaling data: %v", err)
	}

	pending, err := renameio.NewPendingFile(filePath, renameio.WithPermissions(0o644))
	if err != nil {
		return LogErrorf("error creating %s: %v", filePath, err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("path", filePath).Msg("cleanup pending file")
		}
	}()

	if _, err := pending.Write(append(jsonData, '\n')); err != nil {
		return LogErrorf("error writing to %s: %v", filePath, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return LogErrorf("error replacing %s: %v", filePath, err)
	}

	logger.Info().Str("path", filePath).Msg("results written")
	return nil
}
