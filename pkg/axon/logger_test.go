package axon

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewDefaultLogger(t *testing.T) {
	logger := NewDefaultLogger()
	if logger == nil {
		t.Fatal("NewDefaultLogger() should not return nil")
	}

	// None of these should panic.
	logger.Error("test error")
	logger.Errorf("test error: %s", "detail")
	logger.Warn("test warning")
	logger.Warnf("test warning: %s", "detail")
	logger.Info("test info")
	logger.Infof("test info: %s", "detail")
	logger.Debug("test debug")
	logger.Debugf("test debug: %s", "detail")
}

func TestLogger_WithFieldsReturnsNewInstance(t *testing.T) {
	logger := NewDefaultLogger()
	withFields := logger.WithFields(map[string]interface{}{"worker": 3})

	if withFields == nil {
		t.Fatal("WithFields() should not return nil")
	}
	if withFields == logger {
		t.Error("WithFields() should return a distinct logger, not mutate the receiver")
	}

	// Should not panic, and the original logger's fields must be untouched.
	withFields.Info("worker started")
	logger.Info("unrelated message")
}

func TestLogger_WithFieldsMerges(t *testing.T) {
	base := NewDefaultLogger().WithFields(map[string]interface{}{"a": 1})
	merged := base.WithFields(map[string]interface{}{"b": 2})

	gl, ok := merged.(*goLogger)
	if !ok {
		t.Fatal("WithFields() should return a *goLogger")
	}
	if gl.fields["a"] != 1 || gl.fields["b"] != 2 {
		t.Errorf("merged fields = %v, want both a and b present", gl.fields)
	}
}

func TestNewJSONLogger_ConfiguresJSONOutput(t *testing.T) {
	logger := NewJSONLogger()
	gl, ok := logger.(*goLogger)
	if !ok {
		t.Fatal("NewJSONLogger() should return a *goLogger")
	}
	if !gl.config.JSONOutput {
		t.Error("NewJSONLogger() should configure JSONOutput")
	}
	logger.Info("json message")
}

func TestLogger_WithWorkerStampsPoolIndex(t *testing.T) {
	logger := NewDefaultLogger().WithWorker(3)
	gl, ok := logger.(*goLogger)
	if !ok {
		t.Fatal("WithWorker() should return a *goLogger")
	}
	if gl.fields["worker"] != 3 {
		t.Errorf("fields[\"worker\"] = %v, want 3", gl.fields["worker"])
	}
	logger.Debug("worker-scoped message")
}

func TestLogger_WithActorStampsAddress(t *testing.T) {
	addr := Address{Domain: DomainActor, Index: 5, Generation: 2}
	logger := NewDefaultLogger().WithActor(addr)
	gl, ok := logger.(*goLogger)
	if !ok {
		t.Fatal("WithActor() should return a *goLogger")
	}
	if gl.fields["actor"] != addr.String() {
		t.Errorf("fields[\"actor\"] = %v, want %v", gl.fields["actor"], addr.String())
	}
}

func TestLogger_LevelFiltersBelowConfiguredMinimum(t *testing.T) {
	logger := NewLogger(LoggerConfig{Level: "WARN"})
	gl := logger.(*goLogger)

	gl.debugLogger.SetOutput(new(discardWithCounter))
	counter := &discardWithCounter{}
	gl.debugLogger.SetOutput(counter)
	gl.infoLogger.SetOutput(counter)

	logger.Debug("should be suppressed")
	logger.Info("should be suppressed too")
	if counter.n != 0 {
		t.Errorf("Level: WARN should suppress Debug/Info entries, got %d writes", counter.n)
	}

	warnCounter := &discardWithCounter{}
	gl.warnLogger.SetOutput(warnCounter)
	logger.Warn("should be written")
	if warnCounter.n != 1 {
		t.Errorf("Level: WARN should still write Warn entries, got %d writes", warnCounter.n)
	}
}

type discardWithCounter struct{ n int }

func (d *discardWithCounter) Write(p []byte) (int, error) {
	d.n++
	return len(p), nil
}

func TestLogEntry_MarshalsExpectedFields(t *testing.T) {
	entry := logEntry{
		Level:   "INFO",
		Message: "test message",
		Fields:  map[string]interface{}{"worker": 3},
	}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "test message") {
		t.Error("marshaled log entry should contain the message")
	}
	if !strings.Contains(out, "worker") {
		t.Error("marshaled log entry should contain structured fields")
	}
}
