package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		mode, level string
		want        zapcore.Level
		wantErr     bool
	}{
		{"production", "", zapcore.InfoLevel, false},
		{"prod", "warn", zapcore.WarnLevel, false},
		{"dev", "", zapcore.DebugLevel, false},
		{"", "error", zapcore.ErrorLevel, false},
		{"dev", "chatty", 0, true},
	}
	for _, tt := range tests {
		log, err := New(tt.mode, tt.level)
		if (err != nil) != tt.wantErr {
			t.Fatalf("New(%q, %q) err = %v, wantErr %v", tt.mode, tt.level, err, tt.wantErr)
		}
		if err != nil {
			continue
		}
		if !log.Core().Enabled(tt.want) {
			t.Errorf("New(%q, %q): level %s not enabled", tt.mode, tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
			t.Errorf("New(%q, %q): level below %s enabled", tt.mode, tt.level, tt.want)
		}
	}
}
