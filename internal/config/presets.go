package config

// Muonic systems are compact enough that exp(-κ r_max) underflows at the
// default r_max, so their presets scale r_max with the Bohr radius.
const muonicRMaxFactor = 60

func preset(atom string, n, kappa int, rMaxFactor float64) *Config {
	cfg := DefaultConfig()
	cfg.Atom = atom
	cfg.N = n
	cfg.Kappa = kappa
	cfg.Solver.RMaxFactor = rMaxFactor
	return cfg
}

var Presets = map[string]map[string]*Config{
	"hydrogen": {
		"1s":    preset("hydrogen", 1, -1, 0),
		"2s":    preset("hydrogen", 2, -1, 0),
		"2p1/2": preset("hydrogen", 2, 1, 0),
		"2p3/2": preset("hydrogen", 2, -2, 0),
	},
	"helium_ion": {
		"1s": preset("helium_ion", 1, -1, 0),
		"2s": preset("helium_ion", 2, -1, 0),
	},
	"muonic_hydrogen": {
		"1s": preset("muonic_hydrogen", 1, -1, muonicRMaxFactor),
		"2s": preset("muonic_hydrogen", 2, -1, muonicRMaxFactor),
	},
	"muonic_helium": {
		"1s":    preset("muonic_helium", 1, -1, muonicRMaxFactor),
		"2s":    preset("muonic_helium", 2, -1, muonicRMaxFactor),
		"2p3/2": preset("muonic_helium", 2, -2, muonicRMaxFactor),
		"5p3/2": preset("muonic_helium", 5, -2, 4*muonicRMaxFactor),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(atom, name string) *Config {
	atomPresets, ok := Presets[atom]
	if !ok {
		return nil
	}
	cfg, ok := atomPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(atom string) []string {
	atomPresets, ok := Presets[atom]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(atomPresets))
	for name := range atomPresets {
		names = append(names, name)
	}
	return names
}
