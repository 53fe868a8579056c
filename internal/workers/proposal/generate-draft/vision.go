package generatedraft

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// labelConfidenceThreshold filters detector labels; anything below is noise.
const labelConfidenceThreshold = 0.80

// defaultVisionConfidence applies when no analysis result carried a score.
const defaultVisionConfidence = 0.5

const findingsSchemaJSON = `{
	"type": "object",
	"definitions": {
		"analysis": {
			"type": "object",
			"properties": {
				"damage":          {"type": "array", "items": {"type": "string"}},
				"issues":          {"type": "array", "items": {"type": "string"}},
				"materials":       {"type": "array", "items": {"type": "string"}},
				"objects": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"name": {"type": "string"},
							"note": {"type": "string"}
						},
						"required": ["name"]
					}
				},
				"needsMorePhotos": {"type": "array", "items": {"type": "string"}},
				"confidence":      {"type": "number", "minimum": 0, "maximum": 1}
			}
		}
	},
	"properties": {
		"detector": {
			"type": "object",
			"properties": {
				"labels": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"name":       {"type": "string"},
							"confidence": {"type": "number"}
						},
						"required": ["name"]
					}
				}
			}
		},
		"llm":      {"$ref": "#/definitions/analysis"},
		"combined": {"$ref": "#/definitions/analysis"}
	}
}`

var findingsSchema = mustCompileFindingsSchema()

func mustCompileFindingsSchema() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(findingsSchemaJSON))
	if err != nil {
		panic("findings schema: " + err.Error())
	}
	return schema
}

// decodeFindings validates and decodes one photo's analysis payload.
// A payload that fails validation is treated as absent.
func decodeFindings(raw json.RawMessage) *Findings {
	if len(raw) == 0 {
		return nil
	}

	result, err := findingsSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil || !result.Valid() {
		return nil
	}

	var findings Findings
	if err := json.Unmarshal(raw, &findings); err != nil {
		return nil
	}
	return &findings
}

// extractVisionContext merges per-photo analysis payloads into one canonical
// signal set. Pure function, no I/O. The deduplicated sets are invariant to
// photo ordering; ordering only affects which object notes come first.
func extractVisionContext(photos []PhotoInput) VisionContext {
	vc := VisionContext{}

	damage := newDedupedList()
	issues := newDedupedList()
	materials := newDedupedList()
	labels := newDedupedList()
	needsMore := newDedupedList()
	seenObjects := make(map[string]struct{})

	var confidenceSum float64
	var confidenceCount int

	for _, photo := range photos {
		findings := decodeFindings(photo.Findings)
		if findings == nil {
			continue
		}

		for _, result := range []*AnalysisResult{findings.LLM, findings.Combined} {
			if result == nil {
				continue
			}
			damage.addAll(result.Damage)
			issues.addAll(result.Issues)
			materials.addAll(result.Materials)
			needsMore.addAll(result.NeedsMorePhotos)

			for _, obj := range result.Objects {
				name := strings.TrimSpace(obj.Name)
				note := strings.TrimSpace(obj.Note)
				if name == "" || note == "" {
					continue // unannotated detections are noise
				}
				key := strings.ToLower(name + "|" + note)
				if _, ok := seenObjects[key]; ok {
					continue
				}
				seenObjects[key] = struct{}{}
				vc.Objects = append(vc.Objects, ObservedObject{Name: name, Note: note})
			}

			if result.Confidence != nil {
				confidenceSum += *result.Confidence
				confidenceCount++
			}
		}

		if findings.Detector != nil {
			for _, label := range findings.Detector.Labels {
				if label.Confidence >= labelConfidenceThreshold {
					labels.add(label.Name)
				}
			}
		}
	}

	vc.Damage = damage.items
	vc.Issues = issues.items
	vc.Materials = materials.items
	vc.Labels = labels.items
	vc.NeedsMorePhotos = needsMore.items

	if confidenceCount > 0 {
		vc.AvgConfidence = confidenceSum / float64(confidenceCount)
	} else {
		vc.AvgConfidence = defaultVisionConfidence
	}

	return vc
}

// dedupedList keeps insertion order while deduplicating case-insensitively.
type dedupedList struct {
	items []string
	seen  map[string]struct{}
}

func newDedupedList() *dedupedList {
	return &dedupedList{seen: make(map[string]struct{})}
}

func (l *dedupedList) add(item string) {
	clean := strings.TrimSpace(item)
	if clean == "" {
		return
	}
	key := strings.ToLower(clean)
	if _, ok := l.seen[key]; ok {
		return
	}
	l.seen[key] = struct{}{}
	l.items = append(l.items, clean)
}

func (l *dedupedList) addAll(items []string) {
	for _, item := range items {
		l.add(item)
	}
}
