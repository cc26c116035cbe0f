package provider

import (
	"strings"

	"voicetask/models"
)

// catalog is the built-in provider directory, keyed by category.
// Entries are in the order a search returns them before ranking.
var catalog = map[string][]models.Provider{
	"tandarts": {
		{ID: "tandarts-zuidas", Name: "Tandartspraktijk Zuidas", Address: "Gustav Mahlerlaan 12", City: "Amsterdam", Phone: "020-5550101", Rating: 4.6, ReviewCount: 212, Specialties: []string{"controle", "mondhygiëne"}, BookingURL: "https://zuidas-tandarts.example.nl/afspraak"},
		{ID: "tandarts-dom", Name: "Tandartsen aan de Dom", Address: "Domplein 4", City: "Utrecht", Phone: "030-5550144", Rating: 4.8, ReviewCount: 97, Specialties: []string{"controle", "implantaten"}, BookingURL: "https://tandartsendom.example.nl/boeken"},
		{ID: "tandarts-maas", Name: "Mondzorg Maasstad", Address: "Coolsingel 40", City: "Rotterdam", Phone: "010-5550190", Rating: 4.2, ReviewCount: 330, Specialties: []string{"orthodontie", "spoed"}, BookingURL: "https://mondzorgmaasstad.example.nl/afspraak"},
		{ID: "tandarts-jordaan", Name: "Tandarts Jordaan", Address: "Westerstraat 88", City: "Amsterdam", Phone: "020-5550177", Rating: 4.6, ReviewCount: 58, Specialties: []string{"controle", "angstpatiënten"}, BookingURL: "https://tandartsjordaan.example.nl/afspraak"},
	},
	"huisarts": {
		{ID: "huisarts-oost", Name: "Huisartsenpraktijk Oost", Address: "Linnaeusstraat 30", City: "Amsterdam", Phone: "020-5550201", Rating: 4.1, ReviewCount: 141, Specialties: []string{"spreekuur", "vaccinaties"}, BookingURL: "https://hapoost.example.nl/afspraak"},
		{ID: "huisarts-lombok", Name: "Gezondheidscentrum Lombok", Address: "Kanaalstraat 120", City: "Utrecht", Phone: "030-5550233", Rating: 4.4, ReviewCount: 86, Specialties: []string{"spreekuur", "fysiotherapie"}, BookingURL: "https://gclombok.example.nl/afspraak"},
	},
	"kapper": {
		{ID: "kapper-knip", Name: "Knipperlicht Kappers", Address: "Nieuwe Binnenweg 210", City: "Rotterdam", Phone: "010-5550311", Rating: 4.7, ReviewCount: 402, Specialties: []string{"heren", "baard"}, BookingURL: "https://knipperlicht.example.nl/boeken"},
		{ID: "kapper-salon9", Name: "Salon Negen", Address: "Oudegracht 9", City: "Utrecht", Phone: "030-5550399", Rating: 4.5, ReviewCount: 120, Specialties: []string{"dames", "kleuring"}, BookingURL: "https://salonnegen.example.nl/boeken"},
		{ID: "kapper-pijp", Name: "Kapsalon De Pijp", Address: "Albert Cuypstraat 55", City: "Amsterdam", Phone: "020-5550322", Rating: 3.9, ReviewCount: 77, Specialties: []string{"heren", "dames"}, BookingURL: "https://kapsalondepijp.example.nl/boeken"},
	},
	"fysiotherapeut": {
		{ID: "fysio-beweeg", Name: "Beweegpunt Fysiotherapie", Address: "Biltstraat 101", City: "Utrecht", Phone: "030-5550412", Rating: 4.9, ReviewCount: 64, Specialties: []string{"sportblessures", "rug"}, BookingURL: "https://beweegpunt.example.nl/intake"},
		{ID: "fysio-west", Name: "Fysio West", Address: "Jan Evertsenstraat 5", City: "Amsterdam", Phone: "020-5550455", Rating: 4.3, ReviewCount: 51, Specialties: []string{"nek", "schouder"}, BookingURL: "https://fysiowest.example.nl/intake"},
	},
	"garage": {
		{ID: "garage-vos", Name: "Autobedrijf Vos", Address: "Industrieweg 14", City: "Utrecht", Phone: "030-5550501", Rating: 4.4, ReviewCount: 188, Specialties: []string{"apk", "onderhoud"}, BookingURL: "https://autovos.example.nl/werkplaats"},
		{ID: "garage-ring", Name: "Ringweg Garage", Address: "Ringdijk 300", City: "Rotterdam", Phone: "010-5550577", Rating: 4.0, ReviewCount: 93, Specialties: []string{"apk", "banden"}, BookingURL: "https://ringweggarage.example.nl/afspraak"},
	},
}

// categoryAliases maps spoken or English variants onto catalog keys.
var categoryAliases = map[string]string{
	"dentist":         "tandarts",
	"tandartsen":      "tandarts",
	"doctor":          "huisarts",
	"gp":              "huisarts",
	"dokter":          "huisarts",
	"hairdresser":     "kapper",
	"barber":          "kapper",
	"kapsalon":        "kapper",
	"physio":          "fysiotherapeut",
	"physiotherapist": "fysiotherapeut",
	"fysio":           "fysiotherapeut",
	"mechanic":        "garage",
	"apk":             "garage",
	"autogarage":      "garage",
}

// NormalizeCategory maps a spoken category onto a catalog key.
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if alias, ok := categoryAliases[c]; ok {
		return alias
	}
	return c
}
