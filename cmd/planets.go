package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s0up4200/holocron/composite"
	"github.com/s0up4200/holocron/loader"
	"github.com/s0up4200/holocron/render"
	"github.com/s0up4200/holocron/swapi"
)

// listRequest holds the flags of planets list
type listRequest struct {
	search string
	page   int
	filter string
	preset string
	sort   bool
}

// showRequest holds the flags of planets show
type showRequest struct {
	idOrURL    string
	noSpecies  bool
	noVehicles bool
	noFilms    bool
}

var (
	listReq listRequest
	showReq showRequest
)

// planetsCmd groups the planet views
var planetsCmd = &cobra.Command{
	Use:   "planets",
	Short: "Browse planets",
}

var planetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of planets",
	Long: `List one page of planets, optionally searched by name.

A filter expression or preset narrows down the fetched page on the client,
for example:

  holocron planets list --filter 'hasClimate("arid") and population() > 100000'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlanetList(cmd.Context(), cmd.OutOrStdout(), listReq)
	},
}

var planetsShowCmd = &cobra.Command{
	Use:   "show <id|url>",
	Short: "Show a planet with its residents and films",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := showReq
		req.idOrURL = args[0]
		return runPlanetShow(cmd.Context(), cmd.OutOrStdout(), req)
	},
}

var planetsPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the filter presets from the config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPresets(cmd.OutOrStdout())
	},
}

func init() {
	planetsListCmd.Flags().StringVarP(&listReq.search, "search", "s", "", "search planets by name")
	planetsListCmd.Flags().IntVarP(&listReq.page, "page", "p", 1, "page number")
	planetsListCmd.Flags().StringVarP(&listReq.filter, "filter", "f", "", "filter expression applied to the page")
	planetsListCmd.Flags().StringVar(&listReq.preset, "preset", "", "use a preset filter from config")
	planetsListCmd.Flags().BoolVar(&listReq.sort, "sort", false, "sort the page by name")

	planetsShowCmd.Flags().BoolVar(&showReq.noSpecies, "no-species", false, "don't resolve resident species")
	planetsShowCmd.Flags().BoolVar(&showReq.noVehicles, "no-vehicles", false, "don't resolve resident vehicles")
	planetsShowCmd.Flags().BoolVar(&showReq.noFilms, "no-films", false, "don't load the planet's films")

	planetsCmd.AddCommand(planetsListCmd)
	planetsCmd.AddCommand(planetsShowCmd)
	planetsCmd.AddCommand(planetsPresetsCmd)
}

func runPlanetList(ctx context.Context, w io.Writer, req listRequest) error {
	if req.page < 1 {
		return fmt.Errorf("invalid page: %d (must be 1 or greater)", req.page)
	}

	// Compile before fetching so a typo does not cost a request
	expression := req.filter
	if expression == "" && req.preset == "" {
		expression = cfg.Filter.Default
	}
	compiled, err := filters.Resolve(expression, req.preset)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	var opts []loader.PaginatedOption[swapi.Planet]
	if req.sort || cfg.List.SortByName {
		opts = append(opts, loader.WithSortByName(planetName, cfg.List.Language()))
	}

	query := loader.Query{Search: req.search, Page: req.page}
	pages := loader.NewPaginated(ctx, loader.PagesFromClient[swapi.Planet](client, swapi.ResourcePlanets), query, logger, opts...)
	defer pages.Close()

	state, err := pages.Wait(ctx)
	if err != nil {
		return err
	}
	if state.Err != nil {
		fmt.Fprint(w, formatter.FormatError(state.Err.Error()))
		return errRendered
	}

	planets, err := filters.Apply(ctx, compiled, state.Items)
	if err != nil {
		return fmt.Errorf("failed to apply filter: %w", err)
	}

	listOpts := render.ListOptions{
		Search:     req.search,
		Page:       req.page,
		TotalPages: state.TotalPages,
	}
	if compiled != nil {
		listOpts.Filter = compiled.Expression()
		logger.Debug().
			Str("filter", listOpts.Filter).
			Int("fetched", len(state.Items)).
			Int("matched", len(planets)).
			Msg("Applied filter")
	}

	fmt.Fprintln(w, formatter.FormatPlanetList(planets, listOpts))
	return nil
}

func runPlanetShow(ctx context.Context, w io.Writer, req showRequest) error {
	id, err := swapi.ResolveID(req.idOrURL)
	if err != nil {
		return fmt.Errorf("invalid planet: %w", err)
	}

	entity := loader.NewEntity(ctx, loader.OneFromClient[swapi.Planet](client, swapi.ResourcePlanets), id, logger)
	defer entity.Close()

	planetState, err := entity.Wait(ctx)
	if err != nil {
		return err
	}
	if planetState.Err != nil {
		fmt.Fprint(w, formatter.FormatError(planetState.Err.Error()))
		return errRendered
	}
	planet := *planetState.Item

	var filmURLs []string
	if !req.noFilms {
		filmURLs = planet.Films
	}

	// Residents and films load side by side
	residents := loader.NewCollection(ctx, loader.ManyFromClient[swapi.Resident](client), planet.Residents, logger)
	defer residents.Close()
	films := loader.NewCollection(ctx, loader.ManyFromClient[swapi.Film](client), filmURLs, logger)
	defer films.Close()

	residentState, err := residents.Wait(ctx)
	if err != nil {
		return err
	}

	details := render.PlanetDetails{
		Planet:       planet,
		ResidentsErr: residentState.Err,
		HideFilms:    req.noFilms,
	}
	if residentState.Err == nil {
		opts := loader.DetailsOptions{
			IncludeSpecies:  !req.noSpecies,
			IncludeVehicles: !req.noVehicles,
		}
		details.Residents, err = resolveResidents(ctx, residentState.Items, opts)
		if err != nil {
			return err
		}
	}

	filmState, err := films.Wait(ctx)
	if err != nil {
		return err
	}
	details.Films, details.FilmsErr = filmState.Items, filmState.Err

	fmt.Fprintln(w, formatter.FormatPlanetDetails(details))
	return nil
}

// resolveResidents loads species and vehicles of every resident concurrently.
// A resident whose relations failed is kept with the counts only.
func resolveResidents(ctx context.Context, residents []swapi.Resident, opts loader.DetailsOptions) ([]composite.Resident, error) {
	species := loader.ManyFromClient[swapi.Species](client)
	vehicles := loader.ManyFromClient[swapi.Vehicle](client)

	loaders := make([]*loader.ResidentDetails, len(residents))
	for i, r := range residents {
		loaders[i] = loader.NewResidentDetails(ctx, species, vehicles, r, opts, logger)
	}
	defer func() {
		for _, d := range loaders {
			d.Close()
		}
	}()

	out := make([]composite.Resident, len(residents))
	for i, d := range loaders {
		state, err := d.Wait(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = state.Resident
	}
	return out, nil
}

func runPresets(w io.Writer) error {
	names := filters.Presets()
	if len(names) == 0 {
		fmt.Fprintln(w, "No filter presets configured. Add them under filter.presets in the config.")
		return nil
	}

	fmt.Fprintln(w, "Filter presets:")
	for _, name := range names {
		preset, _ := filters.Preset(name)
		fmt.Fprintf(w, "  • %s: %s\n", name, preset.Expression())
	}
	return nil
}

func planetName(p swapi.Planet) string {
	return p.Name
}
