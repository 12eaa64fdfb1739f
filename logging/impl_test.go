package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestConsoleLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("mesh", INFO, &buf)

	logger.Infof("built grid")
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	parts := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	test.That(t, parts, test.ShouldHaveLength, 5)
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "mesh")
	test.That(t, parts[3], test.ShouldContainSubstring, "logging/impl_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "built grid")

	logger.Infow("sweep", "level", "axis", "subdivisions", 3, "dangling")
	line, err = buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	test.That(t, line, test.ShouldContainSubstring, `"level": "axis"`)
	test.That(t, line, test.ShouldContainSubstring, `"subdivisions": 3`)
	test.That(t, line, test.ShouldContainSubstring, `"unpaired": "dangling"`)
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("", INFO, &buf)
	logger.SetLevel(WARN)

	logger.Debugf("dropped")
	logger.Infow("dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warnf("kept %d", 1)
	test.That(t, buf.String(), test.ShouldContainSubstring, "kept 1")
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)
	test.That(t, logger.Sublogger("sub").GetLevel(), test.ShouldEqual, WARN)

	for name, want := range map[string]Level{"debug": DEBUG, "INFO": INFO, "Warning": WARN, " error ": ERROR} {
		level, err := LevelFromString(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, want)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldBeError, `unknown log level: "loud"`)

	for _, level := range []Level{DEBUG, INFO, WARN, ERROR} {
		test.That(t, level.AsZap().String(), test.ShouldEqual, level.String())
		out, err := json.Marshal(level)
		test.That(t, err, test.ShouldBeNil)
		var back Level
		test.That(t, json.Unmarshal(out, &back), test.ShouldBeNil)
		test.That(t, back, test.ShouldEqual, level)
	}
	_, err = json.Marshal(Level(7))
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"shout"`), &level), test.ShouldNotBeNil)
	test.That(t, json.Unmarshal([]byte(`3`), &level), test.ShouldNotBeNil)
}

func TestSublogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	sub := logger.Sublogger("octree").Sublogger("refine")
	sub.Infow("subdivided", "node", "wtr_wtrT01")

	entries := observed.All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "octree.refine")
	test.That(t, entries[0].Message, test.ShouldEqual, "subdivided")
	test.That(t, entries[0].ContextMap()["node"], test.ShouldEqual, "wtr_wtrT01")
}

func TestReplaceGlobal(t *testing.T) {
	previous := Global()
	defer ReplaceGlobal(previous)

	logger, observed := NewObservedTestLogger(t)
	ReplaceGlobal(logger)
	Global().Debugf("%d quadtrees", 27)

	entries := observed.All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].Message, test.ShouldEqual, "27 quadtrees")
}
