package filter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/s0up4200/holocron/swapi"
)

var tatooine = swapi.Planet{
	Name:           "Tatooine",
	RotationPeriod: "23",
	OrbitalPeriod:  "304",
	Diameter:       "10465",
	Climate:        "arid",
	Gravity:        "1 standard",
	Terrain:        "desert",
	SurfaceWater:   "1",
	Population:     "200000",
	Residents: []string{
		"https://swapi.dev/api/people/1/",
		"https://swapi.dev/api/people/2/",
		"https://swapi.dev/api/people/4/",
	},
	Films: []string{
		"https://swapi.dev/api/films/1/",
		"https://swapi.dev/api/films/3/",
	},
	URL: "https://swapi.dev/api/planets/1/",
}

var yavin = swapi.Planet{
	Name:       "Yavin IV",
	Diameter:   "10200",
	Climate:    "temperate, tropical",
	Terrain:    "jungle, rainforests",
	Population: "1000",
	Films:      []string{"https://swapi.dev/api/films/1/"},
	URL:        "https://swapi.dev/api/planets/3/",
}

var hoth = swapi.Planet{
	Name:       "Hoth",
	Diameter:   "7200",
	Climate:    "frozen",
	Terrain:    "tundra, ice caves, mountain ranges",
	Population: "unknown",
	Films:      []string{"https://swapi.dev/api/films/2/"},
	URL:        "https://swapi.dev/api/planets/4/",
}

// generateTestPlanets creates numbered planets with alternating attributes
func generateTestPlanets(count int) []swapi.Planet {
	climates := []string{"arid", "temperate", "frozen", "murky"}
	planets := make([]swapi.Planet, count)
	for i := range count {
		planets[i] = swapi.Planet{
			Name:       fmt.Sprintf("Planet %d", i),
			Climate:    climates[i%len(climates)],
			Population: fmt.Sprintf("%d", i*1000),
			Diameter:   fmt.Sprintf("%d", 1000+i),
			URL:        fmt.Sprintf("https://swapi.dev/api/planets/%d/", i+1),
		}
	}
	return planets
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasClimate("arid")`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasClimate("unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown identifier",
			expression: `Moons > 2`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `population()`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `hasTerrain("desert") and population() > 1000 and filmCount() >= 2`,
		},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				var compErr *CompilationError
				if !errors.As(err, &compErr) {
					t.Errorf("expected *CompilationError, got %T", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filter.Expression() != tt.expression {
				t.Errorf("Expression() = %q, want %q", filter.Expression(), tt.expression)
			}
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		planet     swapi.Planet
		expected   bool
	}{
		{name: "climate", expression: `hasClimate("arid")`, planet: tatooine, expected: true},
		{name: "climate list entry", expression: `hasClimate("Tropical")`, planet: yavin, expected: true},
		{name: "climate partial word", expression: `hasClimate("trop")`, planet: yavin, expected: false},
		{name: "terrain", expression: `hasTerrain("ice caves")`, planet: hoth, expected: true},
		{name: "population", expression: `population() > 100000`, planet: tatooine, expected: true},
		{name: "unknown population reads as zero", expression: `population() > 0`, planet: hoth, expected: false},
		{name: "isUnknown", expression: `isUnknown(Population)`, planet: hoth, expected: true},
		{name: "diameter", expression: `diameter() < 10000`, planet: hoth, expected: true},
		{name: "resident count", expression: `residentCount() == 3`, planet: tatooine, expected: true},
		{name: "film count", expression: `filmCount() > 1`, planet: yavin, expected: false},
		{name: "name contains", expression: `contains(Name, "yavin")`, planet: yavin, expected: true},
		{name: "name prefix", expression: `startsWith(Name, "ta")`, planet: tatooine, expected: true},
		{name: "id", expression: `ID == "4"`, planet: hoth, expected: true},
		{name: "struct access", expression: `Planet.Gravity == "1 standard"`, planet: tatooine, expected: true},
		{name: "negation", expression: `not hasClimate("frozen")`, planet: hoth, expected: false},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile filter: %v", err)
			}

			if got := filter.Evaluate(tt.planet); got != tt.expected {
				t.Errorf("expected %v but got %v for expression %q", tt.expected, got, tt.expression)
			}
		})
	}
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isDesertWorld": func(terrain string) bool { return terrain == "desert" },
	}))

	filter, err := compiler.Compile(`isDesertWorld(Terrain)`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}
	if !filter.Evaluate(tatooine) {
		t.Error("expected Tatooine to match")
	}
	if filter.Evaluate(hoth) {
		t.Error("expected Hoth not to match")
	}
}

func TestConcurrentEvaluationKeepsOrder(t *testing.T) {
	planets := generateTestPlanets(1000)

	filter, err := NewExprCompiler().Compile(`hasClimate("arid") or population() > 900000`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	evaluator := NewConcurrentEvaluator(WithWorkers(4), WithBatchSize(50))
	defer evaluator.Stop(context.Background())

	matches, err := evaluator.Evaluate(context.Background(), filter, planets)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	expected := evaluateSequential(filter, planets)
	if len(matches) != len(expected) {
		t.Fatalf("expected %d matches but got %d", len(expected), len(matches))
	}
	for i := range expected {
		if matches[i].Name != expected[i].Name {
			t.Fatalf("match %d: expected %q but got %q", i, expected[i].Name, matches[i].Name)
		}
	}
}

func TestConcurrentEvaluationCancelled(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`true`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	evaluator := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	defer evaluator.Stop(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := evaluator.Evaluate(ctx, filter, generateTestPlanets(200)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`true`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	evaluator := NewConcurrentEvaluator()
	defer evaluator.Stop(context.Background())

	matches, err := evaluator.Evaluate(context.Background(), filter, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matches == nil || len(matches) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", matches)
	}
}

func TestManagerPresets(t *testing.T) {
	manager := NewManager()
	defer manager.Close(context.Background())

	err := manager.RegisterPresets(map[string]string{
		"desert":    `hasTerrain("desert")`,
		"populated": `population() > 0`,
	})
	if err != nil {
		t.Fatalf("failed to register presets: %v", err)
	}

	if names := manager.Presets(); strings.Join(names, ",") != "desert,populated" {
		t.Errorf("unexpected preset names %v", names)
	}

	err = manager.RegisterPresets(map[string]string{
		"ok":     `true`,
		"broken": `hasTerrain(`,
	})
	var presetErr *PresetError
	if !errors.As(err, &presetErr) || presetErr.Preset != "broken" {
		t.Fatalf("expected PresetError for 'broken', got %v", err)
	}
	if _, exists := manager.Preset("ok"); exists {
		t.Error("presets must be registered all or nothing")
	}
}

func TestManagerResolve(t *testing.T) {
	manager := NewManager()
	defer manager.Close(context.Background())

	if err := manager.RegisterPreset("populated", `population() > 0`); err != nil {
		t.Fatalf("failed to register preset: %v", err)
	}

	planets := []swapi.Planet{tatooine, yavin, hoth}
	ctx := context.Background()

	tests := []struct {
		name       string
		expression string
		preset     string
		want       []string
		wantErr    bool
	}{
		{name: "nothing keeps everything", want: []string{"Tatooine", "Yavin IV", "Hoth"}},
		{name: "preset only", preset: "populated", want: []string{"Tatooine", "Yavin IV"}},
		{name: "expression only", expression: `filmCount() == 1`, want: []string{"Yavin IV", "Hoth"}},
		{name: "both must match", expression: `filmCount() == 1`, preset: "populated", want: []string{"Yavin IV"}},
		{name: "unknown preset", preset: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := manager.Resolve(tt.expression, tt.preset)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			matches, err := manager.Apply(ctx, filter, planets)
			if err != nil {
				t.Fatalf("apply failed: %v", err)
			}

			got := make([]string, len(matches))
			for i, p := range matches {
				got[i] = p.Name
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("expected %v but got %v", tt.want, got)
			}
		})
	}
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile(`hasClimate("arid")`)
	if err != nil {
		t.Fatalf("first compilation failed: %v", err)
	}
	second, err := compiler.Compile(`  hasClimate("arid")  `)
	if err != nil {
		t.Fatalf("second compilation failed: %v", err)
	}
	if first != second {
		t.Error("expected the cached filter to be returned")
	}
	if compiler.Size() != 1 {
		t.Errorf("expected cache size 1 but got %d", compiler.Size())
	}

	for _, e := range []string{`true`, `false`} {
		if _, err := compiler.Compile(e); err != nil {
			t.Fatalf("compilation failed: %v", err)
		}
	}
	if compiler.Size() != 2 {
		t.Errorf("expected cache to stay at capacity 2 but got %d", compiler.Size())
	}

	compiler.Clear()
	if compiler.Size() != 0 {
		t.Errorf("expected cache size 0 after clear but got %d", compiler.Size())
	}

	uncached := NewExprCompiler(WithCache(0))
	if _, err := uncached.Compile(`true`); err != nil {
		t.Fatalf("compilation failed: %v", err)
	}
	if uncached.Size() != 0 {
		t.Errorf("expected no caching, got size %d", uncached.Size())
	}
}

func TestWorkerPoolStopped(t *testing.T) {
	pool := NewWorkerPool(1)
	if err := pool.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := pool.Submit(context.Background(), func() {}); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	planets := generateTestPlanets(5000)
	filter, err := NewExprCompiler().Compile(`hasClimate("temperate") and population() > 10000`)
	if err != nil {
		b.Fatalf("failed to compile filter: %v", err)
	}

	evaluator := NewConcurrentEvaluator()
	defer evaluator.Stop(context.Background())

	ctx := context.Background()
	for b.Loop() {
		if _, err := evaluator.Evaluate(ctx, filter, planets); err != nil {
			b.Fatal(err)
		}
	}
}
