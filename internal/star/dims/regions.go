package dims

// Region classifications derived from Brazilian state codes.
const (
	RegionSoutheast   = "southeast"
	RegionSouth       = "south"
	RegionNortheast   = "northeast"
	RegionCentralWest = "central-west"
	RegionNorth       = "north"
	RegionUnknown     = "unknown"
)

// DefaultRegionMap returns the built-in state-to-region lookup covering all
// 26 Brazilian states plus the federal district. Deployments with a
// different geography supply their own mapping through the config file.
func DefaultRegionMap() map[string]string {
	return map[string]string{
		"SP": RegionSoutheast, "RJ": RegionSoutheast, "MG": RegionSoutheast, "ES": RegionSoutheast,
		"PR": RegionSouth, "SC": RegionSouth, "RS": RegionSouth,
		"BA": RegionNortheast, "SE": RegionNortheast, "AL": RegionNortheast, "PE": RegionNortheast,
		"PB": RegionNortheast, "RN": RegionNortheast, "CE": RegionNortheast, "PI": RegionNortheast,
		"MA": RegionNortheast,
		"GO": RegionCentralWest, "MT": RegionCentralWest, "MS": RegionCentralWest, "DF": RegionCentralWest,
		"AM": RegionNorth, "RR": RegionNorth, "AP": RegionNorth, "PA": RegionNorth,
		"TO": RegionNorth, "RO": RegionNorth, "AC": RegionNorth,
	}
}
