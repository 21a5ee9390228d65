package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/holocron/config"
	"github.com/s0up4200/holocron/filter"
	"github.com/s0up4200/holocron/swapi"
)

// fakeSWAPI serves fixtures keyed by request path and records every request
type fakeSWAPI struct {
	server   *httptest.Server
	mu       sync.Mutex
	fixtures map[string]any
	requests []string
}

func (f *fakeSWAPI) ref(path string) string {
	return f.server.URL + "/api" + path
}

func (f *fakeSWAPI) set(path string, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fixtures["/api"+path] = body
}

func (f *fakeSWAPI) requested(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r == "/api"+path {
			return true
		}
	}
	return false
}

// setupTestApp points the command globals at a fake SWAPI
func setupTestApp(t *testing.T) *fakeSWAPI {
	t.Helper()

	fake := &fakeSWAPI{fixtures: map[string]any{}}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.requests = append(fake.requests, r.URL.Path)
		body, ok := fake.fixtures[r.URL.Path]
		fake.mu.Unlock()

		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(fake.server.Close)

	var err error
	logger = zerolog.Nop()
	cfg = &config.Config{
		API:  config.APIConfig{URL: fake.server.URL + "/api", Timeout: 5 * time.Second},
		List: config.ListConfig{Locale: "en"},
	}
	client, err = swapi.NewClient(cfg.API.URL, logger)
	require.NoError(t, err)

	filters = filter.NewManager()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = filters.Close(ctx)
	})

	return fake
}

func planetFixture(fake *fakeSWAPI, name, id, climate string, residents, films []string) swapi.Planet {
	return swapi.Planet{
		Name:       name,
		Climate:    climate,
		Terrain:    "desert",
		Diameter:   "10465",
		Population: "200000",
		Residents:  residents,
		Films:      films,
		URL:        fake.ref("/planets/" + id + "/"),
	}
}

func TestPlanetList(t *testing.T) {
	fake := setupTestApp(t)

	tatooine := planetFixture(fake, "Tatooine", "1", "arid", nil, nil)
	hoth := planetFixture(fake, "Hoth", "4", "frozen", nil, nil)
	fake.set("/planets", map[string]any{
		"count":   60,
		"results": []swapi.Planet{tatooine, hoth},
	})

	t.Run("page with pagination", func(t *testing.T) {
		var out bytes.Buffer
		err := runPlanetList(context.Background(), &out, listRequest{page: 1})
		require.NoError(t, err)

		assert.Contains(t, out.String(), "Planets (2, page 1 of 6):")
		assert.Contains(t, out.String(), "├── Tatooine (#1)")
		assert.Contains(t, out.String(), "╰── Hoth (#4)")
		assert.Contains(t, out.String(), "Pages: [1] 2 next › (of 6)")
	})

	t.Run("filter narrows the page", func(t *testing.T) {
		var out bytes.Buffer
		err := runPlanetList(context.Background(), &out, listRequest{page: 1, filter: `hasClimate("frozen")`})
		require.NoError(t, err)

		assert.Contains(t, out.String(), "Planet (1, page 1 of 6):")
		assert.Contains(t, out.String(), "Hoth")
		assert.NotContains(t, out.String(), "Tatooine")
	})

	t.Run("filter matching nothing", func(t *testing.T) {
		var out bytes.Buffer
		err := runPlanetList(context.Background(), &out, listRequest{page: 1, filter: `Name == "Naboo"`})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "No planets on this page match the filter")
	})

	t.Run("sorted by name", func(t *testing.T) {
		var out bytes.Buffer
		err := runPlanetList(context.Background(), &out, listRequest{page: 1, sort: true})
		require.NoError(t, err)

		assert.Less(t, bytes.Index(out.Bytes(), []byte("Hoth")), bytes.Index(out.Bytes(), []byte("Tatooine")))
	})

	t.Run("invalid filter fails before fetching", func(t *testing.T) {
		var out bytes.Buffer
		err := runPlanetList(context.Background(), &out, listRequest{page: 1, filter: "population( >"})

		var compileErr *filter.CompilationError
		assert.ErrorAs(t, err, &compileErr)
		assert.Empty(t, out.String())
	})

	t.Run("unknown preset", func(t *testing.T) {
		err := runPlanetList(context.Background(), &bytes.Buffer{}, listRequest{page: 1, preset: "missing"})

		var presetErr *filter.PresetError
		assert.ErrorAs(t, err, &presetErr)
	})

	t.Run("invalid page", func(t *testing.T) {
		err := runPlanetList(context.Background(), &bytes.Buffer{}, listRequest{page: 0})
		assert.Error(t, err)
	})
}

func TestPlanetListEmptySearch(t *testing.T) {
	fake := setupTestApp(t)
	fake.set("/planets", map[string]any{"count": 0, "results": []swapi.Planet{}})

	var out bytes.Buffer
	err := runPlanetList(context.Background(), &out, listRequest{search: "zzz", page: 1})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `No planets found matching "zzz"`)
}

func TestPlanetListFailure(t *testing.T) {
	setupTestApp(t)

	var out bytes.Buffer
	err := runPlanetList(context.Background(), &out, listRequest{page: 1})

	assert.ErrorIs(t, err, errRendered)
	assert.Contains(t, out.String(), "Error: failed to fetch: Not Found")
	assert.NotContains(t, out.String(), "Planets (")
}

func TestPlanetShow(t *testing.T) {
	fake := setupTestApp(t)

	luke := swapi.Resident{
		Name:      "Luke Skywalker",
		Height:    "172",
		HairColor: "blond",
		EyeColor:  "blue",
		BirthYear: "19BBY",
		Gender:    "male",
		Species:   []string{fake.ref("/species/1/")},
		Vehicles:  []string{fake.ref("/vehicles/14/")},
		URL:       fake.ref("/people/1/"),
	}
	fake.set("/people/1/", luke)
	fake.set("/species/1/", swapi.Species{Name: "Human"})
	fake.set("/vehicles/14/", swapi.Vehicle{Name: "Snowspeeder", Model: "t-47 airspeeder"})
	fake.set("/films/1/", swapi.Film{Title: "A New Hope", EpisodeID: 4, Director: "George Lucas", ReleaseDate: "1977-05-25"})

	tatooine := planetFixture(fake, "Tatooine", "1", "arid", []string{luke.URL}, []string{fake.ref("/films/1/")})
	fake.set("/planets/1/", tatooine)

	t.Run("everything resolved", func(t *testing.T) {
		var out bytes.Buffer
		err := runPlanetShow(context.Background(), &out, showRequest{idOrURL: "1"})
		require.NoError(t, err)

		assert.Contains(t, out.String(), "Tatooine")
		assert.Contains(t, out.String(), "Population:      200,000")
		assert.Contains(t, out.String(), "╰── Luke Skywalker (born 19BBY)")
		assert.Contains(t, out.String(), "Species: Human")
		assert.Contains(t, out.String(), "Vehicles: Snowspeeder (t-47 airspeeder)")
		assert.Contains(t, out.String(), "Episode 4: A New Hope")
		assert.Contains(t, out.String(), "Released: May 25, 1977")
	})

	t.Run("reference url and excluded relations", func(t *testing.T) {
		fake.mu.Lock()
		fake.requests = nil
		fake.mu.Unlock()

		var out bytes.Buffer
		err := runPlanetShow(context.Background(), &out, showRequest{
			idOrURL:    tatooine.URL,
			noSpecies:  true,
			noVehicles: true,
			noFilms:    true,
		})
		require.NoError(t, err)

		assert.Contains(t, out.String(), "Species: 1 species")
		assert.Contains(t, out.String(), "Vehicles: 1 vehicle")
		assert.NotContains(t, out.String(), "Films")
		assert.False(t, fake.requested("/species/1/"))
		assert.False(t, fake.requested("/vehicles/14/"))
		assert.False(t, fake.requested("/films/1/"))
	})
}

func TestPlanetShowSectionFailure(t *testing.T) {
	fake := setupTestApp(t)

	fake.set("/films/1/", swapi.Film{Title: "A New Hope", EpisodeID: 4, ReleaseDate: "1977-05-25"})
	fake.set("/planets/1/", planetFixture(fake, "Tatooine", "1", "arid",
		[]string{fake.ref("/people/404/")}, []string{fake.ref("/films/1/")}))

	var out bytes.Buffer
	err := runPlanetShow(context.Background(), &out, showRequest{idOrURL: "1"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Residents: could not be loaded (failed to fetch: Not Found)")
	assert.Contains(t, out.String(), "Episode 4: A New Hope")
}

func TestPlanetShowNotFound(t *testing.T) {
	setupTestApp(t)

	var out bytes.Buffer
	err := runPlanetShow(context.Background(), &out, showRequest{idOrURL: "999"})

	assert.ErrorIs(t, err, errRendered)
	assert.Contains(t, out.String(), "Error: failed to fetch: Not Found")
}

func TestPlanetShowEmptyID(t *testing.T) {
	setupTestApp(t)

	err := runPlanetShow(context.Background(), &bytes.Buffer{}, showRequest{idOrURL: "  "})
	assert.ErrorIs(t, err, swapi.ErrEmptyID)
}

func TestPresets(t *testing.T) {
	setupTestApp(t)

	var out bytes.Buffer
	require.NoError(t, runPresets(&out))
	assert.Contains(t, out.String(), "No filter presets configured")

	require.NoError(t, filters.RegisterPresets(map[string]string{
		"desert": `hasTerrain("desert")`,
		"big":    "diameter() > 10000",
	}))

	out.Reset()
	require.NoError(t, runPresets(&out))
	assert.Equal(t, "Filter presets:\n  • big: diameter() > 10000\n  • desert: hasTerrain(\"desert\")\n", out.String())
}

func TestRunTest(t *testing.T) {
	fake := setupTestApp(t)
	fake.set("/", map[string]string{"planets": fake.ref("/planets/")})
	fake.set("/planets", map[string]any{"count": 61, "results": []swapi.Planet{}})

	var out bytes.Buffer
	require.NoError(t, runTest(context.Background(), &out))

	assert.Contains(t, out.String(), "✓ Connection successful!")
	assert.Contains(t, out.String(), "- Total planets: 61")
	assert.Contains(t, out.String(), "- Pages: 7")
}

func TestRunTestConnectionFailure(t *testing.T) {
	setupTestApp(t)

	err := runTest(context.Background(), &bytes.Buffer{})
	assert.ErrorContains(t, err, "connection failed")
}

func TestNewFilterManager(t *testing.T) {
	t.Run("small batches run on the pool in order", func(t *testing.T) {
		m, err := newFilterManager(config.FilterConfig{
			Workers:   2,
			BatchSize: 2,
			Presets:   map[string]string{"arid": `hasClimate("arid")`},
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = m.Close(context.Background()) })

		climates := []string{"arid", "frozen", "arid", "temperate", "arid", "arid, windy", "murky", "arid"}
		planets := make([]swapi.Planet, len(climates))
		for i, c := range climates {
			planets[i] = swapi.Planet{Name: string(rune('A' + i)), Climate: c}
		}

		preset, ok := m.Preset("arid")
		require.True(t, ok)

		got, err := m.Apply(context.Background(), preset, planets)
		require.NoError(t, err)

		names := make([]string, len(got))
		for i, p := range got {
			names[i] = p.Name
		}
		assert.Equal(t, []string{"A", "C", "E", "F", "H"}, names)
	})

	t.Run("invalid preset", func(t *testing.T) {
		_, err := newFilterManager(config.FilterConfig{Presets: map[string]string{"bad": "population( >"}})

		var presetErr *filter.PresetError
		assert.ErrorAs(t, err, &presetErr)
	})
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.LoggingConfig
		level zerolog.Level
	}{
		{name: "default", cfg: config.LoggingConfig{}, level: zerolog.InfoLevel},
		{name: "debug", cfg: config.LoggingConfig{Level: "DEBUG"}, level: zerolog.DebugLevel},
		{name: "warn json", cfg: config.LoggingConfig{Level: "warn", Format: "json"}, level: zerolog.WarnLevel},
		{name: "error", cfg: config.LoggingConfig{Level: "error", Color: true}, level: zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := setupLogger(tt.cfg, false)
			assert.Equal(t, tt.level, l.GetLevel())
		})
	}
}

func TestUserAgent(t *testing.T) {
	version = "1.2.3"
	t.Cleanup(func() { version = "dev" })

	assert.Equal(t, "holocron/1.2.3", userAgent(""))
	assert.Equal(t, "mirror-bot/1.2.3", userAgent("mirror-bot"))
	assert.Equal(t, "custom/9", userAgent("custom/9"))
}

func TestVersion(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		v, err := parseVersion("v1.4.0")
		require.NoError(t, err)
		assert.Equal(t, "1.4.0", v.String())

		_, err = parseVersion("dev")
		assert.Error(t, err)
	})

	t.Run("newer", func(t *testing.T) {
		tests := []struct {
			current string
			release string
			want    bool
		}{
			{current: "1.0.0", release: "1.0.1", want: true},
			{current: "1.2.0", release: "1.2.0", want: false},
			{current: "v2.0.0", release: "1.9.9", want: false},
			{current: "1.0.0-rc.1", release: "1.0.0", want: true},
		}
		for _, tt := range tests {
			got, err := isNewer(tt.current, tt.release)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%s -> %s", tt.current, tt.release)
		}
	})

	t.Run("string", func(t *testing.T) {
		version, buildTime = "1.4.0", "2026-01-01"
		t.Cleanup(func() { version, buildTime = "dev", "unknown" })

		assert.Contains(t, versionString(), "holocron v1.4.0 (built 2026-01-01")
	})
}
