package workerinfo

// Metadata captures static identifiers for the worker. Centralising the values
// makes it easy to clone this repository for new workers.
type Metadata struct {
	Name        string
	BinaryName  string
	Slug        string
	Description string
	GeneratorID string
}

// Info describes the current worker.
var Info = Metadata{
	Name:        "Transcribee Local Whisper Worker",
	BinaryName:  "transcribee-worker",
	Slug:        "transcribee-whisper-worker",
	Description: "Local speech-to-text worker backed by Whisper, streaming time-aligned paragraphs.",
	GeneratorID: "whisper-local",
}

// RunMetadata produces the standard metadata payload attached to emitted
// transcripts.
func RunMetadata(modelVariant, language string) map[string]string {
	return map[string]string{
		"generator":     Info.GeneratorID,
		"model_variant": modelVariant,
		"language":      language,
	}
}
