package worker

import (
	"encoding/json"
	"fmt"
	"strings"

	"contentforge/internal/domain"
)

// repurposeTargets names the format a repurpose job transforms content into.
var repurposeTargets = map[domain.ContentType]string{
	domain.ContentTypeText:  "blog post",
	domain.ContentTypeImage: "social media image",
	domain.ContentTypeAudio: "podcast segment",
	domain.ContentTypeVideo: "short-form video",
}

// BuildPrompt returns the deterministic prompt for a job. Fresh generations
// use the request prompt as-is. Repurpose jobs instruct the transformation
// explicitly and append the original output.
func BuildPrompt(job *domain.Job, original string) string {
	if !job.Repurpose() {
		return job.Prompt
	}
	target, ok := repurposeTargets[job.ContentType]
	if !ok {
		target = string(job.ContentType)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Repurpose the following content for a %s.\n\n%s", target, original)
	if extra := strings.TrimSpace(job.Prompt); extra != "" {
		fmt.Fprintf(&b, "\n\nAdditional instructions: %s", extra)
	}
	return b.String()
}

// originalText extracts the human-readable output of a prior content record
// so it can be fed into a repurpose prompt. Binary results fall back to the
// prompt that produced them.
func originalText(content *domain.Content) string {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(content.ResultJSON, &payload); err == nil && payload.Text != "" {
		return payload.Text
	}
	return content.Prompt
}
