package seed_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transit-map/backend/internal/seed"
)

func TestU9(t *testing.T) {
	line, err := seed.U9()

	require.NoError(t, err)
	assert.Equal(t, "U9", line.ID)
	assert.Equal(t, "#f3791d", line.Color)
	require.Len(t, line.Stops, 17)
	assert.Equal(t, "Osloer Straße", line.Stops[0].Name)
	assert.Equal(t, "Rathaus Steglitz", line.Stops[16].Name)
	assert.InDelta(t, 52.52, line.Stops[7].Lat, 0.05)
}

func TestLoad_EmptyPathFallsBackToU9(t *testing.T) {
	line, err := seed.Load("")

	require.NoError(t, err)
	assert.Equal(t, "U9", line.ID)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.yaml")
	doc := "id: M10\nname: Tram M10\nstops:\n  - {id: a, name: Hauptbahnhof, lat: 52.525, lng: 13.369}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	line, err := seed.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "M10", line.ID)
	require.Len(t, line.Stops, 1)
	assert.Equal(t, 13.369, line.Stops[0].Lng)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := seed.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := seed.Parse(strings.NewReader("id: x\nname: y\nroute_color: red\n"))

	require.ErrorContains(t, err, "route_color")
}
