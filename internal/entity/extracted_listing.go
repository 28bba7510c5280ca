package entity

// ExtractedListing is the structured listing the model derives from a page.
// Zero values mean "not found".
type ExtractedListing struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        int64    `json:"price"`
	Sqm          float64  `json:"sqm"`
	Layout       string   `json:"layout"`
	Floor        string   `json:"floor"`
	Amenities    []string `json:"amenities"`
	ImageURLs    []string `json:"image_urls"`
	BuildingName string   `json:"building_name"`
	Area         string   `json:"area"`
}

// FieldOutcome records how a listing field was obtained from the model output.
type FieldOutcome string

const (
	// OutcomePresent means the model returned a usable value.
	OutcomePresent FieldOutcome = "present"
	// OutcomeDefaulted means the field was missing or empty ("not found on page").
	OutcomeDefaulted FieldOutcome = "defaulted"
	// OutcomeInvalid means the model returned a value of the wrong shape; the default was used.
	OutcomeInvalid FieldOutcome = "invalid"
)

// Listing field names, as they appear in the model's JSON.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldPrice        = "price"
	FieldSqm          = "sqm"
	FieldLayout       = "layout"
	FieldFloor        = "floor"
	FieldAmenities    = "amenities"
	FieldImageURLs    = "image_urls"
	FieldBuildingName = "building_name"
	FieldArea         = "area"
)

// ListingFields lists every field in schema order.
var ListingFields = []string{
	FieldTitle, FieldDescription, FieldPrice, FieldSqm, FieldLayout,
	FieldFloor, FieldAmenities, FieldImageURLs, FieldBuildingName, FieldArea,
}

// ValidatedListing is an ExtractedListing together with per-field provenance.
type ValidatedListing struct {
	Listing  ExtractedListing
	Outcomes map[string]FieldOutcome
	// FlaggedAmenities holds amenity values outside AmenityVocabulary, in the order seen.
	FlaggedAmenities []string
}
