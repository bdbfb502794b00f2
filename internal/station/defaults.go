package station

// DefaultConfig covers the CETESB stations of the São Paulo metropolitan
// region with the network-wide 7 km influence radius. Deployments with a
// different network load their own configuration file instead.
func DefaultConfig() Config {
	return Config{
		DefaultRadiusKm: 7,
		Stations: []Station{
			{ID: 72, Name: "Parque D.Pedro II", Latitude: -23.5448, Longitude: -46.6276},
			{ID: 73, Name: "Congonhas", Latitude: -23.6163, Longitude: -46.6633},
			{ID: 83, Name: "Ibirapuera", Latitude: -23.5914, Longitude: -46.6605},
			{ID: 84, Name: "Lapa", Latitude: -23.5093, Longitude: -46.7012},
			{ID: 85, Name: "Mooca", Latitude: -23.5497, Longitude: -46.6005},
			{ID: 91, Name: "Cerqueira César", Latitude: -23.5531, Longitude: -46.6723},
			{ID: 92, Name: "Diadema", Latitude: -23.6859, Longitude: -46.6119},
			{ID: 95, Name: "Cid.Universitária-USP-Ipen", Latitude: -23.5662, Longitude: -46.7373},
			{ID: 96, Name: "N.Senhora do Ó", Latitude: -23.4800, Longitude: -46.6920},
			{ID: 97, Name: "Itaquera", Latitude: -23.5797, Longitude: -46.4664},
			{ID: 99, Name: "Pinheiros", Latitude: -23.5615, Longitude: -46.7020},
			{ID: 118, Name: "Guarulhos", Latitude: -23.4630, Longitude: -46.4955},
			{ID: 120, Name: "Osasco", Latitude: -23.5266, Longitude: -46.7921},
			{ID: 262, Name: "Interlagos", Latitude: -23.6805, Longitude: -46.6754},
			{ID: 269, Name: "Capão Redondo", Latitude: -23.6684, Longitude: -46.7801},
			{ID: 270, Name: "Marg.Tietê-Pte Remédios", Latitude: -23.5187, Longitude: -46.7433},
		},
		Indicators: map[string]int{
			"MP10":  12,
			"SO2":   13,
			"NO2":   15,
			"CO":    16,
			"NO":    17,
			"NOx":   18,
			"TEMP":  25,
			"UR":    28,
			"MP2.5": 57,
			"BEN":   61,
			"TOL":   62,
			"O3":    63,
		},
	}
}

// Default builds the registry from DefaultConfig. It panics only if the
// built-in configuration is itself invalid, which is a programming error.
func Default() *Registry {
	r, err := NewRegistry(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return r
}
