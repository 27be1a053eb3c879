package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/ganeshsabale-99/DMP-Project/internal/config"
	"github.com/ganeshsabale-99/DMP-Project/internal/store/memory"
	"github.com/ganeshsabale-99/DMP-Project/internal/suggest"
	"github.com/ganeshsabale-99/DMP-Project/pkg/llm"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
	"github.com/ganeshsabale-99/DMP-Project/pkg/monitoring"
)

func quietLogger() logging.Logger {
	l := logging.NewLogger()
	l.SetOutput(io.Discard)
	return l
}

func TestClosersRunInReverse(t *testing.T) {
	var order []string
	var c closers
	c.add("first", func() error { order = append(order, "first"); return nil })
	c.add("second", func() error { order = append(order, "second"); return errors.New("ignored") })
	c.run(quietLogger())
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestOpenStoreDefaultsToMemory(t *testing.T) {
	cfg := appconfig.Config{StoreBackend: appconfig.BackendMemory, EventBackend: appconfig.BackendStore}
	st, err := openStore(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)

	events, closeFn, err := openEvents(context.Background(), cfg, st, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, closeFn)
	assert.Equal(t, st, events)
}

func TestBuildNotifiersLocalOnly(t *testing.T) {
	cfg := appconfig.Config{Notifiers: []string{appconfig.NotifierLog, appconfig.NotifierWebsocket}}
	hc := monitoring.NewHealthChecker("test", "dev")

	w, err := buildNotifiers(context.Background(), cfg, quietLogger(), hc)
	require.NoError(t, err)
	require.NotNil(t, w.hub)
	assert.Nil(t, w.relay)
	assert.Nil(t, w.producer)

	names := make([]string, 0, len(w.backends))
	for _, b := range w.backends {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"log", "websocket"}, names)
	assert.NoError(t, w.close())
}

func TestBuildSuggester(t *testing.T) {
	s, err := buildSuggester(appconfig.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = buildSuggester(appconfig.Config{SuggestionURL: "http://suggest.local"}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &suggest.HTTPClient{}, s)

	_, err = buildSuggester(appconfig.Config{LLM: llm.Config{Provider: "carrier-pigeon"}}, quietLogger())
	assert.Error(t, err)
}
