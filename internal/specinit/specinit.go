// Package specinit implements the Spec Initializer: idempotent
// creation of a feature's spec.json and requirements.md skeleton,
// with optional project-supplied template overrides.
package specinit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/red64llc/red64/internal/git"
	"github.com/red64llc/red64/pkg/errs"
)

// Result is init's outcome.
type Result struct {
	FeatureName string
	SpecDir     string
}

const (
	initTemplateOverride         = "settings/templates/specs/init.json"
	requirementsTemplateOverride = "settings/templates/specs/requirements-init.md"
)

// Init sanitizes featureName, and — unless the feature's spec.json
// already exists, in which case this is a no-op resume — creates
// <workDir>/.red64/specs/<feature>/ with spec.json and requirements.md.
func Init(workDir, featureName, description string, now string) (Result, error) {
	feature := git.Sanitize(featureName)
	if feature == "" {
		return Result{}, errs.Validationf("feature name %q sanitizes to empty string", featureName)
	}

	specDir := filepath.Join(workDir, ".red64", "specs", feature)
	specJSON := filepath.Join(specDir, "spec.json")

	if _, err := os.Stat(specJSON); err == nil {
		return Result{FeatureName: feature, SpecDir: specDir}, nil
	}

	if err := os.MkdirAll(specDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("specinit: mkdir %s: %w", specDir, err)
	}

	specDoc, err := renderSpecJSON(workDir, feature, now)
	if err != nil {
		return Result{}, err
	}
	if err := renameio.WriteFile(specJSON, specDoc, 0o644); err != nil {
		return Result{}, fmt.Errorf("specinit: write spec.json: %w", err)
	}

	reqDoc := renderRequirements(workDir, feature, description, now)
	reqPath := filepath.Join(specDir, "requirements.md")
	if err := renameio.WriteFile(reqPath, []byte(reqDoc), 0o644); err != nil {
		return Result{}, fmt.Errorf("specinit: write requirements.md: %w", err)
	}

	return Result{FeatureName: feature, SpecDir: specDir}, nil
}

type approvalGate struct {
	Generated bool `json:"generated"`
	Approved  bool `json:"approved"`
}

type specDocument struct {
	FeatureName string `json:"feature_name"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Language    string `json:"language"`
	Phase       string `json:"phase"`
	Approvals   struct {
		Requirements approvalGate `json:"requirements"`
		Design       approvalGate `json:"design"`
		Tasks        approvalGate `json:"tasks"`
	} `json:"approvals"`
	ReadyForImplementation bool `json:"ready_for_implementation"`
}

func renderSpecJSON(workDir, feature, now string) ([]byte, error) {
	overridePath := filepath.Join(workDir, ".red64", initTemplateOverride)
	if data, err := os.ReadFile(overridePath); err == nil {
		return []byte(substitute(string(data), feature, now, "")), nil
	}

	doc := specDocument{
		FeatureName: feature,
		CreatedAt:   now,
		UpdatedAt:   now,
		Language:    "en",
		Phase:       "initialized",
	}
	return json.MarshalIndent(doc, "", "  ")
}

func renderRequirements(workDir, feature, description, now string) string {
	overridePath := filepath.Join(workDir, ".red64", requirementsTemplateOverride)
	if data, err := os.ReadFile(overridePath); err == nil {
		return substitute(string(data), feature, now, description)
	}

	return fmt.Sprintf(
		"# Requirements: %s\n\n## Project Description (Input)\n\n%s\n",
		feature, description,
	)
}

func substitute(tmpl, feature, timestamp, description string) string {
	r := strings.NewReplacer(
		"{{FEATURE_NAME}}", feature,
		"{{TIMESTAMP}}", timestamp,
		"{{PROJECT_DESCRIPTION}}", description,
	)
	return r.Replace(tmpl)
}
