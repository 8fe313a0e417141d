package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("prod", &buf)
	l.WithField("checkout_id", "c-1").Info("checkout committed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "checkout committed", entry["msg"])
	assert.Equal(t, "c-1", entry["checkout_id"])

	buf.Reset()
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestNew_DevIsVerbose(t *testing.T) {
	l := newLogger("dev", &bytes.Buffer{})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestContext(t *testing.T) {
	assert.Equal(t, logrus.StandardLogger(), FromContext(context.Background()))

	l := logrus.New().WithField("request_id", "r-1")
	ctx := ToContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))
}
