package contracts

// Template is one entry of the generative template catalogue.
type Template struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Available bool   `json:"available"`
	// Contract is set for templates that can be minted.
	Contract Name `json:"contract,omitempty"`
}

func Templates() []Template {
	return []Template{
		{ID: "triplehelix", Title: "TripleHelix", Image: "/triplehelix.png", Available: true, Contract: TripleHelix},
		{ID: "noisewave", Title: "NoiseWave", Image: "/noisewave.png"},
		{ID: "fantasia", Title: "Fantasia", Image: "/fantasia.png"},
	}
}
