package swapi

// Resource names a SWAPI collection endpoint
type Resource string

const (
	// ResourcePlanets is the planets collection
	ResourcePlanets Resource = "planets"
	// ResourcePeople is the people collection
	ResourcePeople Resource = "people"
	// ResourceSpecies is the species collection
	ResourceSpecies Resource = "species"
	// ResourceVehicles is the vehicles collection
	ResourceVehicles Resource = "vehicles"
	// ResourceFilms is the films collection
	ResourceFilms Resource = "films"
)

// Path returns the endpoint path of the collection
func (r Resource) Path() string {
	return "/" + string(r)
}

// Planet represents a SWAPI planet. Attributes are display strings since
// SWAPI encodes missing values as "unknown" or "n/a".
type Planet struct {
	Name           string   `json:"name"`
	RotationPeriod string   `json:"rotation_period"`
	OrbitalPeriod  string   `json:"orbital_period"`
	Diameter       string   `json:"diameter"`
	Climate        string   `json:"climate"`
	Gravity        string   `json:"gravity"`
	Terrain        string   `json:"terrain"`
	SurfaceWater   string   `json:"surface_water"`
	Population     string   `json:"population"`
	Residents      []string `json:"residents"`
	Films          []string `json:"films"`
	Created        string   `json:"created,omitempty"`
	Edited         string   `json:"edited,omitempty"`
	URL            string   `json:"url"`
}

// Resident represents a SWAPI person living on a planet
type Resident struct {
	Name      string   `json:"name"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	HairColor string   `json:"hair_color"`
	SkinColor string   `json:"skin_color"`
	EyeColor  string   `json:"eye_color"`
	BirthYear string   `json:"birth_year"`
	Gender    string   `json:"gender"`
	Homeworld string   `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	Vehicles  []string `json:"vehicles"`
	Starships []string `json:"starships"`
	URL       string   `json:"url"`
}

// Species represents a SWAPI species
type Species struct {
	Name           string `json:"name"`
	Classification string `json:"classification"`
	Designation    string `json:"designation"`
	AverageHeight  string `json:"average_height,omitempty"`
	Language       string `json:"language,omitempty"`
	// Homeworld is the only field SWAPI sends as a real null.
	Homeworld *string `json:"homeworld"`
	URL       string  `json:"url"`
}

// Vehicle represents a SWAPI vehicle
type Vehicle struct {
	Name                 string `json:"name"`
	Model                string `json:"model"`
	Manufacturer         string `json:"manufacturer"`
	CostInCredits        string `json:"cost_in_credits"`
	Length               string `json:"length"`
	MaxAtmospheringSpeed string `json:"max_atmosphering_speed"`
	Crew                 string `json:"crew"`
	Passengers           string `json:"passengers"`
	CargoCapacity        string `json:"cargo_capacity"`
	Consumables          string `json:"consumables,omitempty"`
	VehicleClass         string `json:"vehicle_class"`
	URL                  string `json:"url"`
}

// Film represents a SWAPI film
type Film struct {
	Title        string `json:"title"`
	EpisodeID    int    `json:"episode_id"`
	OpeningCrawl string `json:"opening_crawl,omitempty"`
	Director     string `json:"director"`
	Producer     string `json:"producer,omitempty"`
	ReleaseDate  string `json:"release_date"`
	URL          string `json:"url"`
}

// Page is a paginated collection response
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the upstream API advertises another page
func (p *Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}
