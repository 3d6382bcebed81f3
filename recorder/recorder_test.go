package recorder_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/evacsys/evacroute/recorder"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	rec, err := recorder.Open(filepath.Join(t.TempDir(), "evac.db"))
	assert.NoError(t, err)
	defer rec.Close()

	assert.NoError(t, rec.Tick(recorder.TickRecord{
		At:            time.Now(),
		Area:          101,
		TVOCppb:       500,
		ECO2ppm:       800,
		Concentration: 42.5,
		Pitch:         1.2,
		Hazard:        0.65,
		Direction:     "east",
	}))
	assert.NoError(t, rec.Tick(recorder.TickRecord{At: time.Now(), Area: 102, Direction: "north"}))

	n, err := rec.TickCount()
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, rec.Event("alert", "eco2 above threshold"))
	assert.NoError(t, rec.Event("replan", "area 102 hazardous"))
	assert.NoError(t, rec.Event("alert", "gas concentration above threshold"))

	n, err = rec.EventCount("alert")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = rec.EventCount("replan")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
