package lower

import (
	"strings"

	"stagelower/internal/asg"
	"stagelower/internal/ir"
)

// extractJob lifts the job-level parameter declarations and named value
// contexts into the IR job record, structurally unchanged. A "default"
// context is synthesized from parameter defaults when the source graph
// does not declare one.
func extractJob(g *asg.Graph) ir.Job {
	job := ir.Job{
		ID:         "job-" + sanitizeID(g.JobName),
		Name:       g.JobName,
		Parameters: []ir.Parameter{},
		Contexts:   map[string]map[string]string{},
	}

	for _, p := range g.Parameters {
		param := ir.Parameter{
			Name:     p.Name,
			Type:     p.Type,
			Default:  p.Default,
			Prompt:   p.Prompt,
			Required: p.Required,
		}
		if param.Type == "" {
			param.Type = "string"
		}
		if param.Prompt == "" {
			param.Prompt = p.Name
		}
		job.Parameters = append(job.Parameters, param)
	}

	for name, ctx := range g.Contexts {
		values := make(map[string]string, len(ctx))
		for k, v := range ctx {
			values[k] = v
		}
		job.Contexts[name] = values
	}
	if _, ok := job.Contexts["default"]; !ok {
		def := make(map[string]string, len(job.Parameters))
		for _, p := range job.Parameters {
			def[p.Name] = p.Default
		}
		job.Contexts["default"] = def
	}
	return job
}

// checkParamRefs verifies that every parameter referenced by a
// parameterized configuration value is declared at the job level. An
// undeclared reference is a diagnostic; the value keeps its placeholder
// form either way.
func checkParamRefs(nodeID string, paramRefs map[string]string, declared map[string]bool, diags *Diagnostics) {
	for key, value := range paramRefs {
		m := paramNameRE.FindStringSubmatch(value)
		if m == nil {
			continue
		}
		if !declared[m[1]] {
			diags.Warnf(nodeID, "", "configuration key %q references undeclared job parameter %q", key, m[1])
		}
	}
}

func sanitizeID(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.ReplaceAll(name, " ", "_")
}
