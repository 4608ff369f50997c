// Package stage implements the concrete pipeline stages: input extraction,
// research, strategy, generation, brand voice and optimization.
package stage

// Context keys exchanged between stages. Keys also read by the result
// assembler live in the orchestrator package.
const (
	KeyText         = "text"
	KeyTopic        = "topic"
	KeyFilePaths    = "file_paths"
	KeyURLs         = "urls"
	KeyPastPosts    = "past_posts"
	KeyBrandProfile = "brand_profile"

	KeyCombinedContent  = "combined_content"
	KeySynthesis        = "synthesis"
	KeyThemes           = "themes"
	KeyContentTypes     = "content_types"
	KeyExtractedContent = "extracted_content"

	KeyRecommendedTone = "recommended_tone"
	KeyBestContentType = "best_content_type"
	KeyTrendScore      = "trend_score"
	KeyContentGaps     = "content_gaps"

	KeyAngles   = "angles"
	KeyTone     = "tone"
	KeyAudience = "audience"

	KeyBrandConsistencyAvg = "brand_consistency_avg"
	KeyBestVariantScore    = "best_variant_score"
)
