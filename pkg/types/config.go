package types

// RetrievalConfig is an immutable value holding the hyperparameters of one
// retrieval run. Components receive it explicitly per call; the auto-tuner
// produces a new value rather than mutating a shared one, and the caller is
// responsible for installing it as the new default.
type RetrievalConfig struct {
	// MinConfidence is the minimum FinalScore a candidate must reach to be
	// used for generation.
	MinConfidence float64 `json:"min_confidence" mapstructure:"min_confidence"`

	// Temperature used for the answer completion call.
	Temperature float32 `json:"temperature" mapstructure:"temperature"`

	// VectorWeight is the weight of the vector score in the recall stage;
	// the keyword score receives 1-VectorWeight.
	VectorWeight float64 `json:"vector_weight" mapstructure:"vector_weight"`

	// RecallSize is how many candidates the recall stage keeps for reranking.
	RecallSize int `json:"recall_size" mapstructure:"recall_size"`

	// TopK is how many reranked candidates are handed to generation.
	TopK int `json:"top_k" mapstructure:"top_k"`
}

// DefaultRetrievalConfig returns the engine's baseline hyperparameters.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		MinConfidence: 0.3,
		Temperature:   0.2,
		VectorWeight:  0.8,
		RecallSize:    30,
		TopK:          5,
	}
}

// Normalized returns a copy with zero-valued fields replaced by defaults,
// so partially specified overrides stay usable.
func (c RetrievalConfig) Normalized() RetrievalConfig {
	def := DefaultRetrievalConfig()
	if c.MinConfidence <= 0 {
		c.MinConfidence = def.MinConfidence
	}
	if c.VectorWeight <= 0 {
		c.VectorWeight = def.VectorWeight
	}
	if c.RecallSize <= 0 {
		c.RecallSize = def.RecallSize
	}
	if c.TopK <= 0 {
		c.TopK = def.TopK
	}
	return c
}
