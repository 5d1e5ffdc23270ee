package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		expected logrus.Level
		json     bool
	}{
		{level: "", expected: logrus.WarnLevel},
		{level: "debug", format: "json", expected: logrus.DebugLevel, json: true},
		{level: "INFO", format: "JSON", expected: logrus.InfoLevel, json: true},
		{level: "nonsense", format: "text", expected: logrus.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			l := New(tt.level, tt.format)
			require.Equal(t, tt.expected, l.Logger.GetLevel())
			require.Equal(t, "chaincode", l.Data["module"])
			_, isJSON := l.Logger.Formatter.(*logrus.JSONFormatter)
			require.Equal(t, tt.json, isJSON)
		})
	}
}

func TestLoggerIsShared(t *testing.T) {
	require.Same(t, Logger(), Logger())
}
