package edit

// Word is one transcribed word in source-absolute seconds. Read-only to the
// editor; per-word changes live in Config.CaptionOverrides.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *int    `json:"speaker,omitempty"`
}

// Transcript is the full speech transcript for a source video.
type Transcript struct {
	Full     string `json:"full"`
	Words    []Word `json:"words"`
	Language string `json:"language"`
}
