package domain

// SeedForecast is the placeholder forecast carried by every seed zone.
const SeedForecast = "No active flood alerts for this area."

type seedZone struct {
	id, name, location, state, region string
	lat, lng, radius                  float64
	sources                           []string
}

var seedList = []seedZone{
	{"kl", "Kuala Lumpur", "Masjid Jamek", "Kuala Lumpur", "Federal Territory", 3.14, 101.69, 0.04, []string{"Weather API", "CCTV Live", "User Reports"}},
	{"shahAlam", "Shah Alam", "Taman Sri Muda", "Selangor", "Central Region", 3.07, 101.51, 0.05, []string{"CCTV Live", "Gov Sensors"}},
	{"kajang", "Kajang", "Taman Jenaris", "Selangor", "Central Region", 2.99, 101.79, 0.03, []string{"User Reports", "Weather API"}},
	{"seriKembangan", "Seri Kembangan", "Jalan Besar", "Selangor", "Central Region", 3.03, 101.71, 0.02, []string{"Weather API"}},
	{"seremban", "Seremban", "Taman Ampangan", "Negeri Sembilan", "Central Region", 2.72, 101.94, 0.04, []string{"Weather API", "User Reports"}},
	{"jb", "Johor Bahru", "Jalan Wong Ah Fook", "Johor", "Southern Region", 1.49, 103.74, 0.05, []string{"Weather API"}},
	{"batu_pahat", "Batu Pahat", "Pekan Batu Pahat", "Johor", "Southern Region", 1.85, 102.93, 0.04, []string{"Weather API", "User Reports"}},
	{"muar", "Muar", "Pagoh", "Johor", "Southern Region", 2.04, 102.57, 0.03, []string{"Weather API"}},
	{"melaka", "Melaka", "Banda Hilir", "Melaka", "Southern Region", 2.19, 102.25, 0.04, []string{"Weather API"}},
	{"alor_gajah", "Alor Gajah", "Pekan Alor Gajah", "Melaka", "Southern Region", 2.38, 102.21, 0.03, []string{"Weather API"}},
	{"kuantan", "Kuantan", "Sungai Lembing", "Pahang", "East Coast", 3.81, 103.32, 0.06, []string{"Gov Sensors", "Weather API"}},
	{"temerloh", "Temerloh", "Pekan Temerloh", "Pahang", "East Coast", 3.45, 102.42, 0.05, []string{"Gov Sensors"}},
	{"cameron", "Cameron Highlands", "Tanah Rata", "Pahang", "East Coast", 4.46, 101.38, 0.04, []string{"Weather API"}},
	{"kt", "Kuala Terengganu", "Pantai Batu Buruk", "Terengganu", "East Coast", 5.33, 103.15, 0.05, []string{"Weather API", "CCTV Live"}},
	{"dungun", "Dungun", "Paka", "Terengganu", "East Coast", 4.75, 103.42, 0.04, []string{"Weather API"}},
	{"kb", "Kota Bharu", "Pasir Mas", "Kelantan", "East Coast", 6.12, 102.23, 0.07, []string{"Gov Sensors", "CCTV Live", "User Reports"}},
	{"tanah_merah", "Tanah Merah", "Pekan Tanah Merah", "Kelantan", "East Coast", 5.80, 102.15, 0.05, []string{"Gov Sensors", "User Reports"}},
	{"gua_musang", "Gua Musang", "Bandar Gua Musang", "Kelantan", "East Coast", 4.88, 101.97, 0.04, []string{"Gov Sensors"}},
	{"ipoh", "Ipoh", "Taman Canning", "Perak", "Northern Region", 4.59, 101.09, 0.04, []string{"Weather API"}},
	{"taiping", "Taiping", "Kamunting", "Perak", "Northern Region", 4.85, 100.74, 0.04, []string{"Weather API", "User Reports"}},
	{"teluk_intan", "Teluk Intan", "Pekan Teluk Intan", "Perak", "Northern Region", 3.97, 101.02, 0.04, []string{"Gov Sensors"}},
	{"penang", "Penang Island", "Georgetown", "Penang", "Northern Region", 5.35, 100.28, 0.04, []string{"Weather API", "User Reports"}},
	{"butterworth", "Butterworth", "Seberang Perai", "Penang", "Northern Region", 5.40, 100.36, 0.04, []string{"Weather API"}},
	{"alorSetar", "Alor Setar", "Anak Bukit", "Kedah", "Northern Region", 6.12, 100.36, 0.05, []string{"Weather API"}},
	{"sungai_petani", "Sungai Petani", "Bandar Puteri Jaya", "Kedah", "Northern Region", 5.65, 100.49, 0.04, []string{"Weather API"}},
	{"perlis", "Kangar", "Pekan Kangar", "Perlis", "Northern Region", 6.44, 100.20, 0.04, []string{"Weather API"}},
	{"putrajaya", "Putrajaya", "Presint 1", "Putrajaya", "Federal Territory", 2.92, 101.69, 0.03, []string{"Gov Sensors"}},
	{"labuan", "Labuan", "Bandar Labuan", "Labuan", "Federal Territory", 5.28, 115.24, 0.04, []string{"Weather API"}},
	{"kuching", "Kuching", "Batu Kawa", "Sarawak", "East Malaysia", 1.55, 110.35, 0.06, []string{"Weather API"}},
	{"sibu", "Sibu", "Jalan Lanang", "Sarawak", "East Malaysia", 2.30, 111.82, 0.05, []string{"Gov Sensors"}},
	{"bintulu", "Bintulu", "Kidurong", "Sarawak", "East Malaysia", 3.17, 113.04, 0.04, []string{"Weather API"}},
	{"miri", "Miri", "Lutong", "Sarawak", "East Malaysia", 4.41, 114.01, 0.05, []string{"Weather API"}},
	{"sri_aman", "Sri Aman", "Pekan Sri Aman", "Sarawak", "East Malaysia", 1.24, 111.46, 0.05, []string{"Gov Sensors"}},
	{"kk", "Kota Kinabalu", "Likas", "Sabah", "East Malaysia", 5.98, 116.07, 0.05, []string{"Weather API"}},
	{"sandakan", "Sandakan", "Batu Sapi", "Sabah", "East Malaysia", 5.83, 118.11, 0.04, []string{"Weather API", "User Reports"}},
	{"tawau", "Tawau", "Bandar Tawau", "Sabah", "East Malaysia", 4.25, 117.89, 0.04, []string{"Weather API"}},
	{"keningau", "Keningau", "Pekan Keningau", "Sabah", "East Malaysia", 5.34, 116.16, 0.04, []string{"Weather API"}},
}

// SeedZones returns one zero-severity zone per known locality, covering every
// state and federal territory, in a fixed order.
func SeedZones() []FloodZone {
	zones := make([]FloodZone, 0, len(seedList))
	for _, s := range seedList {
		zones = append(zones, NewZone(s.id, s.name, s.location, s.state, s.region, s.lat, s.lng, 0, SeedForecast,
			WithRadius(s.radius),
			WithSources(s.sources...),
			WithProvenance(ProvenanceSeed),
		))
	}
	return zones
}
