package entity

// AmenityVocabulary is the controlled set of amenity terms a listing may carry.
var AmenityVocabulary = []string{
	"pool",
	"gym",
	"parking",
	"security_24h",
	"cctv",
	"elevator",
	"balcony",
	"furnished",
	"air_conditioning",
	"pet_friendly",
	"garden",
	"sauna",
	"co_working_space",
	"kids_playground",
}

var amenitySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(AmenityVocabulary))
	for _, a := range AmenityVocabulary {
		set[a] = struct{}{}
	}
	return set
}()

// IsKnownAmenity reports whether a is part of AmenityVocabulary.
func IsKnownAmenity(a string) bool {
	_, ok := amenitySet[a]
	return ok
}

// AmenityPolicy controls what happens to out-of-vocabulary amenities.
type AmenityPolicy string

const (
	// AmenityPermissive keeps unknown amenities and flags them.
	AmenityPermissive AmenityPolicy = "permissive"
	// AmenityStrict drops unknown amenities and flags them.
	AmenityStrict AmenityPolicy = "strict"
)
