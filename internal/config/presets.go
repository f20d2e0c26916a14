package config

import "sort"

func ptr(v float64) *float64 { return &v }

func preset(name string, temperature float64, layers ...LayerConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Temperature = temperature
	cfg.Layers = layers
	return cfg
}

// bulk is a frozen superconducting reservoir on side b of a stack.
func bulk(phase float64) LayerConfig {
	return LayerConfig{Kind: "superconductor", Name: "bulk", Length: 1, Points: 3, Gap: 1, Phase: phase, Frozen: true}
}

var Presets = map[string]map[string]*Config{
	"bulk": {
		"cold": preset("bulk-cold", 0.01,
			LayerConfig{Kind: "superconductor", Name: "S", Length: 1, Gap: 1},
		),
		"warm": preset("bulk-warm", 0.7,
			LayerConfig{Kind: "superconductor", Name: "S", Length: 1, Gap: 1},
		),
	},
	"proximity": {
		"sn": preset("sn", 0.01,
			LayerConfig{Kind: "superconductor", Name: "S", Length: 1, Gap: 1, B: InterfaceConfig{Conductance: 0.3}},
			LayerConfig{Kind: "conductor", Name: "N", Length: 0.5, A: InterfaceConfig{Conductance: 0.3}},
		),
		"ns-bulk": preset("ns-bulk", 0.01,
			LayerConfig{Kind: "conductor", Name: "N", Length: 1, B: InterfaceConfig{Conductance: 1}},
			bulk(0),
		),
		"sns": preset("sns", 0.01,
			LayerConfig{Kind: "superconductor", Name: "S1", Length: 1, Gap: 1, B: InterfaceConfig{Conductance: 0.3}},
			LayerConfig{Kind: "conductor", Name: "N", Length: 0.5, A: InterfaceConfig{Conductance: 0.3}, B: InterfaceConfig{Conductance: 0.3}},
			LayerConfig{Kind: "superconductor", Name: "S2", Length: 1, Gap: 1, Phase: 1.5707963267948966, A: InterfaceConfig{Conductance: 0.3}},
		),
	},
	"ferromagnet": {
		"sf": preset("sf", 0.01,
			LayerConfig{Kind: "superconductor", Name: "S", Length: 1, Gap: 1, B: InterfaceConfig{Conductance: 0.3}},
			LayerConfig{Kind: "ferromagnet", Name: "F", Length: 0.5, Exchange: []float64{0, 0, 3}, A: InterfaceConfig{Conductance: 0.3}},
		),
		"sf-rotated": preset("sf-rotated", 0.01,
			LayerConfig{Kind: "superconductor", Name: "S", Length: 1, Gap: 1, B: InterfaceConfig{Conductance: 0.3}},
			LayerConfig{Kind: "ferromagnet", Name: "F1", Length: 0.25, Exchange: []float64{3, 0, 0},
				A: InterfaceConfig{Conductance: 0.3}, B: InterfaceConfig{Conductance: 1}},
			LayerConfig{Kind: "ferromagnet", Name: "F2", Length: 0.25, Exchange: []float64{0, 0, 3},
				A: InterfaceConfig{Conductance: 1}},
		),
	},
	"spinactive": {
		"sn-mixing": preset("sn-mixing", 0.01,
			LayerConfig{Kind: "superconductor", Name: "S", Length: 1, Gap: 1,
				B: InterfaceConfig{Conductance: 0.3, SpinMixing: 0.5, Magnetization: []float64{0, 0, 1}}},
			LayerConfig{Kind: "conductor", Name: "N", Length: 0.5,
				A: InterfaceConfig{Conductance: 0.3, SpinMixing: 0.5, Magnetization: []float64{0, 0, 1}}},
		),
		"sn-filter": preset("sn-filter", 0.01,
			LayerConfig{Kind: "superconductor", Name: "S", Length: 1, Gap: 1,
				B: InterfaceConfig{Conductance: 0.3, Polarization: 0.5, SpinMixing: 0.5, SecondOrder: 0.1, Magnetization: []float64{1, 0, 0}}},
			LayerConfig{Kind: "conductor", Name: "N", Length: 0.5, Scattering: ptr(0.05),
				A: InterfaceConfig{Conductance: 0.3, Polarization: 0.5, SpinMixing: 0.5, SecondOrder: 0.1, Magnetization: []float64{1, 0, 0}}},
		),
	},
	"spinorbit": {
		"sn-rashba": preset("sn-rashba", 0.01,
			LayerConfig{Kind: "superconductor", Name: "S", Length: 1, Gap: 1, B: InterfaceConfig{Conductance: 0.3}},
			LayerConfig{Kind: "ferromagnet", Name: "F", Length: 0.5, Exchange: []float64{1, 0, 0},
				SpinOrbit: SpinOrbitConfig{Ax: []float64{0, 1, 0}, Ay: []float64{-1, 0, 0}},
				A:         InterfaceConfig{Conductance: 0.3}},
		),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(category, name string) *Config {
	categoryPresets, ok := Presets[category]
	if !ok {
		return nil
	}
	cfg, ok := categoryPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(category string) []string {
	categoryPresets, ok := Presets[category]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(categoryPresets))
	for name := range categoryPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListCategories() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
