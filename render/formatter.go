// Package render formats planets, residents and films as tree-drawn console text.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/s0up4200/holocron/composite"
	"github.com/s0up4200/holocron/display"
	"github.com/s0up4200/holocron/swapi"
)

const (
	branch     = "├"
	lastBranch = "╰"
	pipe       = "│"
	line       = "──"
	indent     = "│   "
	lastIndent = "    "
)

// ListOptions describes the page a planet list was taken from
type ListOptions struct {
	Search     string
	Page       int
	TotalPages int
	// Filter is the client-side filter expression applied to the page, if any
	Filter string
}

// PlanetDetails is everything shown for a single planet. Sections whose
// loader failed carry the error instead of data.
type PlanetDetails struct {
	Planet       swapi.Planet
	Residents    []composite.Resident
	ResidentsErr error
	Films        []swapi.Film
	FilmsErr     error
	HideFilms    bool
}

// ConsoleFormatter provides console output formatting for planets
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatPlanetList formats one page of planets for console display
func (f *ConsoleFormatter) FormatPlanetList(planets []swapi.Planet, opts ListOptions) string {
	if len(planets) == 0 {
		switch {
		case opts.Search != "":
			return fmt.Sprintf("No planets found matching %q", opts.Search)
		case opts.Filter != "":
			return "No planets on this page match the filter"
		default:
			return "No planets found"
		}
	}

	var sb strings.Builder

	sb.WriteString("\nPlanet")
	if len(planets) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d", len(planets))
	if opts.TotalPages > 0 {
		fmt.Fprintf(&sb, ", page %d of %d", max(opts.Page, 1), opts.TotalPages)
	}
	sb.WriteString("):\n\n")

	for i, planet := range planets {
		isLast := i == len(planets)-1
		f.formatPlanet(&sb, planet, isLast)

		if !isLast {
			sb.WriteString(pipe + "\n")
		}
	}

	if pagination := f.FormatPagination(max(opts.Page, 1), opts.TotalPages); pagination != "" {
		sb.WriteString("\n")
		sb.WriteString(pagination)
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatPagination renders the page window around current, or nothing when
// there is a single page
func (f *ConsoleFormatter) FormatPagination(current, total int) string {
	if total <= 1 {
		return ""
	}

	var parts []string
	if current > 1 {
		parts = append(parts, "‹ prev")
	}
	for _, page := range display.PaginationWindow(current, total) {
		if page == current {
			parts = append(parts, "["+strconv.Itoa(page)+"]")
			continue
		}
		parts = append(parts, strconv.Itoa(page))
	}
	if current < total {
		parts = append(parts, "next ›")
	}

	return fmt.Sprintf("Pages: %s (of %d)\n", strings.Join(parts, " "), total)
}

func (f *ConsoleFormatter) formatPlanet(sb *strings.Builder, planet swapi.Planet, isLast bool) {
	prefix, ind := branchFor(isLast)

	fmt.Fprintf(sb, "%s%s %s", prefix, line, planet.Name)
	if id := swapi.ExtractID(planet.URL); id != "" {
		fmt.Fprintf(sb, " (#%s)", id)
	}
	sb.WriteString("\n")

	fmt.Fprintf(sb, "%sClimate: %s | Terrain: %s\n", ind,
		display.CapitalizeWords(display.DisplayValue(planet.Climate, "")),
		display.CapitalizeWords(display.DisplayValue(planet.Terrain, "")))
	fmt.Fprintf(sb, "%sDiameter: %s km | Films: %d %s\n", ind,
		display.DisplayValue(display.FormatNumber(planet.Diameter), ""),
		len(planet.Films), display.Plural(len(planet.Films), "appearance"))
}

// FormatPlanetDetails formats a planet with its residents and films
func (f *ConsoleFormatter) FormatPlanetDetails(d PlanetDetails) string {
	var sb strings.Builder
	p := d.Planet

	fmt.Fprintf(&sb, "\n%s\n", p.Name)
	sb.WriteString(strings.Repeat("═", max(len([]rune(p.Name)), 8)) + "\n\n")

	grid := []struct {
		label string
		value string
		unit  string
	}{
		{"Rotation Period", display.FormatNumber(p.RotationPeriod), "hours"},
		{"Orbital Period", display.FormatNumber(p.OrbitalPeriod), "days"},
		{"Diameter", display.FormatNumber(p.Diameter), "km"},
		{"Climate", display.CapitalizeWords(display.DisplayValue(p.Climate, "")), ""},
		{"Gravity", display.DisplayValue(p.Gravity, ""), ""},
		{"Terrain", display.CapitalizeWords(display.DisplayValue(p.Terrain, "")), ""},
		{"Population", display.FormatNumber(p.Population), ""},
		{"Surface Water", display.DisplayValue(p.SurfaceWater, ""), "%"},
	}
	for _, row := range grid {
		value := row.value
		if row.unit != "" && !display.IsUnknown(value) {
			if row.unit == "%" {
				value += row.unit
			} else {
				value += " " + row.unit
			}
		}
		fmt.Fprintf(&sb, "  %-16s %s\n", row.label+":", value)
	}

	sb.WriteString("\n")
	f.formatResidents(&sb, d.Residents, d.ResidentsErr)

	if !d.HideFilms {
		sb.WriteString("\n")
		f.formatFilms(&sb, d.Films, d.FilmsErr)
	}

	return sb.String()
}

func (f *ConsoleFormatter) formatResidents(sb *strings.Builder, residents []composite.Resident, err error) {
	if err != nil {
		fmt.Fprintf(sb, "Residents: could not be loaded (%v)\n", err)
		return
	}
	if len(residents) == 0 {
		sb.WriteString("Residents: this planet has no known residents\n")
		return
	}

	fmt.Fprintf(sb, "Residents (%d):\n\n", len(residents))

	for i, r := range residents {
		isLast := i == len(residents)-1
		prefix, ind := branchFor(isLast)

		fmt.Fprintf(sb, "%s%s %s (born %s)\n", prefix, line, r.Name, display.DisplayValue(r.BirthYear, ""))

		height := display.DisplayValue(r.Height, "")
		if !display.IsUnknown(r.Height) {
			height += " cm"
		}
		fmt.Fprintf(sb, "%sHair: %s | Eyes: %s | Gender: %s | Height: %s\n", ind,
			display.CapitalizeWords(display.DisplayValue(r.HairColor, "")),
			display.CapitalizeWords(display.DisplayValue(r.EyeColor, "")),
			display.CapitalizeWords(display.DisplayValue(r.Gender, "")),
			height)

		if species := speciesLine(r); species != "" {
			fmt.Fprintf(sb, "%sSpecies: %s\n", ind, species)
		}
		if vehicles := vehiclesLine(r); vehicles != "" {
			fmt.Fprintf(sb, "%sVehicles: %s\n", ind, vehicles)
		}

		if !isLast {
			sb.WriteString(pipe + "\n")
		}
	}
}

// speciesLine lists resolved species by name and falls back to a count
func speciesLine(r composite.Resident) string {
	if len(r.Resident.Species) == 0 {
		return ""
	}
	if composite.HasSpeciesDetails(r) {
		names := make([]string, len(r.Species.Items))
		for i, s := range r.Species.Items {
			names[i] = s.Name
		}
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%d species", len(r.Resident.Species))
}

// vehiclesLine lists resolved vehicles with their model and falls back to a count
func vehiclesLine(r composite.Resident) string {
	if len(r.Resident.Vehicles) == 0 {
		return ""
	}
	if composite.HasVehicleDetails(r) {
		names := make([]string, len(r.Vehicles.Items))
		for i, v := range r.Vehicles.Items {
			names[i] = v.Name
			if !display.IsUnknown(v.Model) && v.Model != v.Name {
				names[i] += " (" + v.Model + ")"
			}
		}
		return strings.Join(names, ", ")
	}
	n := len(r.Resident.Vehicles)
	return fmt.Sprintf("%d %s", n, display.Plural(n, "vehicle"))
}

func (f *ConsoleFormatter) formatFilms(sb *strings.Builder, films []swapi.Film, err error) {
	if err != nil {
		fmt.Fprintf(sb, "Films: could not be loaded (%v)\n", err)
		return
	}
	if len(films) == 0 {
		sb.WriteString("Films: none\n")
		return
	}

	fmt.Fprintf(sb, "Films (%d):\n\n", len(films))

	for i, film := range films {
		isLast := i == len(films)-1
		prefix, ind := branchFor(isLast)

		fmt.Fprintf(sb, "%s%s Episode %d: %s\n", prefix, line, film.EpisodeID, film.Title)
		fmt.Fprintf(sb, "%sDirected by %s | Released: %s\n", ind,
			display.DisplayValue(film.Director, ""),
			display.FormatDate(film.ReleaseDate))

		if !isLast {
			sb.WriteString(pipe + "\n")
		}
	}
}

// FormatError formats a failed view. It is shown instead of any data.
func (f *ConsoleFormatter) FormatError(msg string) string {
	if msg == "" {
		msg = "Something went wrong"
	}
	return fmt.Sprintf("Error: %s\nRun the command again to retry, or check the API with 'holocron test'.\n", msg)
}

func branchFor(isLast bool) (prefix, ind string) {
	if isLast {
		return lastBranch, lastIndent
	}
	return branch, indent
}
