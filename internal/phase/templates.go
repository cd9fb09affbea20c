package phase

import (
	"strings"

	"github.com/red64llc/red64/pkg/models"
)

// templates maps each "generating" phase to its prompt template.
// Placeholders {feature} and {description} are substituted by render.
var templates = map[models.PhaseType]string{
	models.PhaseInitializing: "Initialize the spec-driven workflow for feature {feature}. " +
		"Project description: {description}",
	models.PhaseRequirementsGenerating: "Generate requirements.md for feature {feature} following the " +
		"EARS format: user stories plus numbered acceptance criteria.",
	models.PhaseDesignGenerating: "Generate design.md for feature {feature} from the approved requirements.md, " +
		"covering architecture, data model, and component interfaces.",
	models.PhaseTasksGenerating: "Generate tasks.md for feature {feature} from the approved design.md: a " +
		"checklist of numbered, dependency-ordered implementation tasks.",
}

// isGenerating reports whether p is one of the closed set of phases that
// invoke an agent at all; every other phase returns success immediately.
func isGenerating(p models.PhaseType) bool {
	_, ok := templates[p]
	return ok
}

func render(p models.PhaseType, feature, description string) string {
	tmpl := templates[p]
	tmpl = strings.ReplaceAll(tmpl, "{feature}", feature)
	tmpl = strings.ReplaceAll(tmpl, "{description}", description)
	return tmpl
}
