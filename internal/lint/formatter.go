package lint

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Formatter formats a successful lint run.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct {
	verbose bool
	success *color.Color
	detail  *color.Color
}

// NewTextFormatter creates a text formatter. verbose adds one line per rule.
func NewTextFormatter(useColor, verbose bool) *TextFormatter {
	success := color.New(color.FgGreen)
	detail := color.New(color.Faint)
	if useColor {
		success.EnableColor()
		detail.EnableColor()
	} else {
		success.DisableColor()
		detail.DisableColor()
	}
	return &TextFormatter{verbose: verbose, success: success, detail: detail}
}

// Format prints the per-rule summary when verbose and the final message.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	if f.verbose {
		for _, o := range result.Outcomes {
			line := fmt.Sprintf("%s %s in %s", o.Spec.Rule, o.Spec.Dependency, o.Spec.Project)
			if o.Check != nil {
				line += fmt.Sprintf(": range %q, %d dependency paths, %d resolutions",
					o.Check.Range, o.Check.PathsChecked, len(o.Check.Resolutions))
			}
			if _, err := f.detail.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	_, err := f.success.Fprintln(w, "Check passed!")
	return err
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Passed bool          `json:"passed"`
	Rules  []JSONOutcome `json:"rules"`
}

// JSONOutcome is one rule in JSON output.
type JSONOutcome struct {
	Rule             string   `json:"rule"`
	Project          string   `json:"project"`
	Dependency       string   `json:"dependency"`
	SpecifiedVersion string   `json:"specified_version,omitempty"`
	Range            string   `json:"range,omitempty"`
	Versions         []string `json:"versions"`
	ProjectsVisited  []string `json:"projects_visited"`
	PathsChecked     int      `json:"paths_checked"`
	DurationMS       float64  `json:"duration_ms"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	out := JSONOutput{Passed: true, Rules: []JSONOutcome{}}
	for _, o := range result.Outcomes {
		jo := JSONOutcome{
			Rule:             o.Spec.Rule,
			Project:          o.Spec.Project,
			Dependency:       o.Spec.Dependency,
			SpecifiedVersion: o.Spec.SpecifiedVersion,
			Versions:         []string{},
			ProjectsVisited:  []string{},
			DurationMS:       float64(o.Duration.Microseconds()) / 1000,
		}
		if o.Check != nil {
			jo.Range = o.Check.Range
			jo.PathsChecked = o.Check.PathsChecked
			jo.ProjectsVisited = append(jo.ProjectsVisited, o.Check.ProjectsVisited...)
			for _, r := range o.Check.Resolutions {
				jo.Versions = append(jo.Versions, r.Version)
			}
		}
		out.Rules = append(out.Rules, jo)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
