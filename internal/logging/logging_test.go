package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	_, ok := NewFormatter("json").(*logrus.JSONFormatter)
	assert.True(t, ok)

	_, ok = NewFormatter("text").(*logrus.TextFormatter)
	assert.True(t, ok)
}

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "json", &buf)
	require.NoError(t, err)

	log.WithField("component", "test").Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", "json", &buf)
	require.NoError(t, err)

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	_, err = New("chatty", "json", &buf)
	assert.Error(t, err)
}
