package domain

import "time"

// JobStatus enumerates design job lifecycle states.
type JobStatus string

const (
	JobStatusProcessing   JobStatus = "processing"
	JobStatusConceptReady JobStatus = "concept_ready"
	JobStatusFailed       JobStatus = "failed"
	JobStatusComplete     JobStatus = "complete"
)

// Stage names in pipeline order. CurrentStage holds the matching 1-based ordinal.
const (
	StageBrandAnalysis     = "brand_analysis"
	StageArtworkGeneration = "artwork_generation"
	StageCompositing       = "compositing"
	StagePolish            = "polish"
)

// StageName maps a 1-based stage ordinal to its name.
func StageName(stage int) string {
	switch stage {
	case 1:
		return StageBrandAnalysis
	case 2:
		return StageArtworkGeneration
	case 3:
		return StageCompositing
	case 4:
		return StagePolish
	default:
		return ""
	}
}

// DesignJob tracks one wrap-design generation end to end. Stage outputs are
// append-only: a later stage never overwrites an earlier stage's output, and the
// record always reflects the furthest successfully completed stage.
type DesignJob struct {
	ID           string
	Inputs       BrandInputs
	CurrentStage int
	StageName    string
	Status       JobStatus

	Analysis     *BrandAnalysis
	ArtworkRefs  []string
	CompositeRef string
	ConceptRef   string
	Export       *PrintExportResult

	FailedStage  string
	ErrorMessage string

	// WriteSeq increments exactly once per persisted transition.
	WriteSeq  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PrintExportResult records the outcome of a print-ready export.
type PrintExportResult struct {
	URL         string  `json:"url"`
	DPI         int     `json:"dpi"`
	BleedInches float64 `json:"bleed_inches"`
	ColorMode   string  `json:"color_mode"`
	WidthPx     int     `json:"width_px"`
	HeightPx    int     `json:"height_px"`
}
