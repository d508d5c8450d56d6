package model

// FusionConfig holds the constants of the score fusion.
type FusionConfig struct {
	// Store score = VectorWeight*vectorScore + RatingWeight*ratingScore
	VectorWeight float64 `json:"vector_weight"`
	RatingWeight float64 `json:"rating_weight"`
	// Used for a missing distance or a missing rating
	NeutralScore float64 `json:"neutral_score"`
	MaxRating    float64 `json:"max_rating"`
	// Multiplier for a store result the graph also returned
	CorroborationBoost float64 `json:"corroboration_boost"`
	// Each retriever is asked for CandidateFactor*limit candidates
	CandidateFactor int `json:"candidate_factor"`
}

// DefaultFusionConfig returns the fusion constants used in production.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		VectorWeight:       0.6,
		RatingWeight:       0.4,
		NeutralScore:       0.5,
		MaxRating:          5,
		CorroborationBoost: 1.2,
		CandidateFactor:    2,
	}
}

// VectorScore maps a distance to (0, 1]; a missing distance scores neutral.
func (c FusionConfig) VectorScore(distance *float64) float64 {
	if distance == nil {
		return c.NeutralScore
	}
	return 1 / (1 + *distance)
}

// RatingScore normalizes a rating; an unrated recipe scores neutral.
func (c FusionConfig) RatingScore(rating float64) float64 {
	if rating == 0 {
		return c.NeutralScore
	}
	return rating / c.MaxRating
}

// StoreScore is the fused score of a store result before any graph corroboration.
func (c FusionConfig) StoreScore(result *StoreResult) float64 {
	return c.VectorWeight*c.VectorScore(result.Distance) + c.RatingWeight*c.RatingScore(result.Rating)
}
