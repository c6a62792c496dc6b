// geocode/verified.go
package geocode

// Manually verified coordinates for addresses the provider resolves
// badly or not at all. Automatic geocoding of informal intersection
// descriptions ("5800 Eastern Ave & 1900 Brady St.") is unreliable, so
// entries here always win over provider results. Keys are normalized
// addresses (scraper.NormalizeAddress).
var verifiedCoordinates = map[string]Result{
	"5800 eastern avenue": {
		Lat:              41.5796,
		Lon:              -90.5513,
		FormattedAddress: "5800 Eastern Avenue, Davenport, Iowa",
	},
	"1900 brady street": {
		Lat:              41.5421,
		Lon:              -90.5723,
		FormattedAddress: "1900 Brady Street, Davenport, Iowa",
	},
	"6700 division street": {
		Lat:              41.5723,
		Lon:              -90.6128,
		FormattedAddress: "6700 Division Street, Davenport, Iowa",
	},
	"kimberly road and harrison street": {
		Lat:              41.5568,
		Lon:              -90.5789,
		FormattedAddress: "Kimberly Road & Harrison Street, Davenport, Iowa",
	},
	"welcome way and west kimberly road": {
		Lat:              41.5581,
		Lon:              -90.6052,
		FormattedAddress: "Welcome Way & West Kimberly Road, Davenport, Iowa",
	},
}
