package logging

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is the severity of a log line. The zero value is INFO.
type Level int

// The supported levels, least severe first.
const (
	DEBUG Level = iota - 1
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "debug",
	INFO:  "info",
	WARN:  "warn",
	ERROR: "error",
}

func (level Level) String() string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return "level(" + strconv.Itoa(int(level)) + ")"
}

// LevelFromString parses one of `debug`, `info`, `warn` (or `warning`) and `error`, ignoring case.
func LevelFromString(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WARN, nil
	}
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return INFO, errors.Errorf("unknown log level: %q", s)
}

// AsZap converts the Level to a `zapcore.Level`.
func (level Level) AsZap() zapcore.Level {
	// both scales run from debug = -1 upwards
	return zapcore.Level(level)
}

// MarshalJSON writes the level by name.
func (level Level) MarshalJSON() ([]byte, error) {
	if _, ok := levelNames[level]; !ok {
		return nil, errors.Errorf("cannot marshal log level %d", int(level))
	}
	return json.Marshal(level.String())
}

// UnmarshalJSON reads a level name.
func (level *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "log level must be a string")
	}
	parsed, err := LevelFromString(s)
	if err != nil {
		return err
	}
	*level = parsed
	return nil
}
