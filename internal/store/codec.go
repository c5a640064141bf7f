package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/keyroom-chat/keyroom/internal/models"
)

// ErrCorruptLog is returned when stored log bytes do not parse.
var ErrCorruptLog = errors.New("corrupt session log")

// EncodeLog serializes a session log, preserving record order and exact
// timestamp strings. An empty log always encodes with an explicit empty
// record array.
func EncodeLog(log models.SessionLog) ([]byte, error) {
	if log.Records == nil {
		log.Records = []models.EncryptedRecord{}
	}
	return json.Marshal(log)
}

// DecodeLog reconstructs a session log from its stored bytes, or fails
// with ErrCorruptLog when the structure is unparseable. DecodeLog is the
// exact inverse of EncodeLog for every reachable log value.
func DecodeLog(data []byte) (models.SessionLog, error) {
	var log models.SessionLog
	if err := json.Unmarshal(data, &log); err != nil {
		return models.SessionLog{}, fmt.Errorf("%w: %v", ErrCorruptLog, err)
	}
	return log, nil
}
