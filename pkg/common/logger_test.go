package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "liyu1981.xyz/iot-datalogger/pkg/testing"
)

func TestLoggingCapture(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	logger := GetLoggerWith(LoggerNameIOTCore, zap.String(LoggerFieldIOTCategory, LoggerCategoryIOTAlarm))
	logger.Info("Test log message", zap.String("key", "value"))
	logger.Debug("below level")

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Test log message") {
		t.Errorf("expected log output to contain message, got: %s", logOutput)
	}
	assert.Contains(t, logOutput, `"logger":"iot_core"`)
	assert.Contains(t, logOutput, `"category":"alarm"`)
	assert.NotContains(t, logOutput, "below level")
}

func TestFilterAndTakeLast(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}

	even := Filter(items, func(i int) bool { return i%2 == 0 })
	assert.Equal(t, []int{2, 4, 6}, even)

	assert.Equal(t, []int{5, 6}, TakeLast(items, 2))
	assert.Equal(t, items, TakeLast(items, 10))
	assert.Empty(t, TakeLast(items, 0))
	assert.Empty(t, TakeLast(items, -1))
}

func TestMapperReducer(t *testing.T) {
	words := []string{"a", "bb", "ccc"}

	lengths := Mapper(words, func(s string) int { return len(s) })
	assert.Equal(t, []int{1, 2, 3}, lengths)

	total := Reducer(lengths, func(acc int, n int) int { return acc + n }, 0)
	assert.Equal(t, 6, total)
}
