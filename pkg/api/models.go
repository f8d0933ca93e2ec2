package api

// ModelInfo describes one entry of the static model catalog.
type ModelInfo struct {
	ID            string
	ContextWindow int
	// Reasoning reports whether the model emits <think>/<ser> markup that
	// the client should strip from visible output.
	Reasoning bool
}

// modelCatalog is the static metadata for the HelpingAI model family.
// Unknown model IDs are still accepted by the API; the catalog only informs
// client-side behavior such as reasoning filtering.
var modelCatalog = []ModelInfo{
	{ID: "Dhanishtha-2.0-preview", ContextWindow: 40960, Reasoning: true},
	{ID: "Dhanishtha-2.0-preview-mini", ContextWindow: 40960, Reasoning: true},
	{ID: "helpingai3-raw", ContextWindow: 131072},
	{ID: "helpingai2.5-10b", ContextWindow: 131072},
}

// Models returns the static model catalog.
func Models() []ModelInfo {
	models := make([]ModelInfo, len(modelCatalog))
	copy(models, modelCatalog)
	return models
}

// LookupModel returns the catalog entry for the given model ID.
func LookupModel(id string) (ModelInfo, bool) {
	for _, info := range modelCatalog {
		if info.ID == id {
			return info, true
		}
	}
	return ModelInfo{}, false
}

// modelEmitsReasoning reports whether responses of the given model should be
// run through the reasoning filter. Unknown models are filtered too: if they
// emit no markup, filtering only normalizes whitespace.
func modelEmitsReasoning(id string) bool {
	info, ok := LookupModel(id)
	if !ok {
		return true
	}
	return info.Reasoning
}
