package filter

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/s0up4200/holocron/display"
	"github.com/s0up4200/holocron/swapi"
)

// DefaultCacheSize is the number of compiled programs kept by NewExprCompiler
const DefaultCacheSize = 128

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache sets the size of the compiled program cache. Zero disables it.
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		c.cacheSize = size
	}
}

// WithCustomFunctions adds helper functions available to every expression
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.extra, funcs)
	}
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	extra     map[string]any
	cacheSize int
	cache     *lru.Cache[string, CompiledFilter]
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		extra:     make(map[string]any),
		cacheSize: DefaultCacheSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cacheSize > 0 {
		// lru.New only fails on a non-positive size
		c.cache, _ = lru.New[string, CompiledFilter](c.cacheSize)
	}

	return c
}

// Compile compiles an expression into an executable filter. The expression is
// type-checked against the planet environment, so unknown identifiers and
// non-boolean results are rejected here rather than at evaluation time.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.environment(swapi.Planet{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		extra:      c.extra,
	}

	if c.cache != nil {
		c.cache.Add(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

func (c *exprCompiler) environment(planet swapi.Planet) map[string]any {
	env := createRuntimeEnvironment(planet)
	maps.Copy(env, c.extra)
	return env
}

// Evaluate evaluates the filter against a planet. A runtime error, such as a
// custom helper panicking, counts as no match.
func (f *exprFilter) Evaluate(planet swapi.Planet) bool {
	env := createRuntimeEnvironment(planet)
	maps.Copy(env, f.extra)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}
	matched, _ := result.(bool)
	return matched
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// addHelperFunctions adds the planet independent helpers
func addHelperFunctions(env map[string]any) {
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["isUnknown"] = display.IsUnknown
}

// createRuntimeEnvironment creates the environment one planet is evaluated in
func createRuntimeEnvironment(planet swapi.Planet) map[string]any {
	env := make(map[string]any, 32)

	addHelperFunctions(env)

	env["Planet"] = planet

	env["population"] = createNumberFunc(planet.Population)
	env["diameter"] = createNumberFunc(planet.Diameter)
	env["rotationPeriod"] = createNumberFunc(planet.RotationPeriod)
	env["orbitalPeriod"] = createNumberFunc(planet.OrbitalPeriod)
	env["surfaceWater"] = createNumberFunc(planet.SurfaceWater)
	env["residentCount"] = createCountFunc(planet.Residents)
	env["filmCount"] = createCountFunc(planet.Films)
	env["hasClimate"] = createListContainsFunc(planet.Climate)
	env["hasTerrain"] = createListContainsFunc(planet.Terrain)

	env["ID"] = swapi.ExtractID(planet.URL)
	env["Name"] = planet.Name
	env["Climate"] = planet.Climate
	env["Terrain"] = planet.Terrain
	env["Gravity"] = planet.Gravity
	env["Population"] = planet.Population
	env["Diameter"] = planet.Diameter
	env["RotationPeriod"] = planet.RotationPeriod
	env["OrbitalPeriod"] = planet.OrbitalPeriod
	env["SurfaceWater"] = planet.SurfaceWater
	env["Residents"] = planet.Residents
	env["Films"] = planet.Films
	env["URL"] = planet.URL

	return env
}

// createNumberFunc parses a SWAPI numeric string once. Unknown values and
// anything unparsable read as zero; use isUnknown to tell them apart.
func createNumberFunc(raw string) func() float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
	if err != nil {
		n = 0
	}
	return func() float64 {
		return n
	}
}

func createCountFunc(refs []string) func() int {
	n := len(refs)
	return func() int {
		return n
	}
}

// createListContainsFunc matches against SWAPI's comma separated lists such
// as "temperate, tropical"
func createListContainsFunc(list string) func(string) bool {
	var entries []string
	for part := range strings.SplitSeq(list, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			entries = append(entries, part)
		}
	}
	return func(value string) bool {
		return slices.Contains(entries, strings.ToLower(strings.TrimSpace(value)))
	}
}
