package pipeline

import (
	"fmt"
	"strings"

	"github.com/user/listing-ingestor/internal/entity"
)

const (
	// DefaultMaxPromptImages caps how many candidate photos the model sees.
	DefaultMaxPromptImages = 50
	// DefaultMaxImages is how many photos the model may pick, and the pipeline will persist.
	DefaultMaxImages = 5
)

// PromptBuilder assembles the extraction instructions for one page.
type PromptBuilder struct {
	maxPromptImages int
	maxImages       int
}

func NewPromptBuilder(maxPromptImages, maxImages int) *PromptBuilder {
	if maxPromptImages <= 0 {
		maxPromptImages = DefaultMaxPromptImages
	}
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	return &PromptBuilder{maxPromptImages: maxPromptImages, maxImages: maxImages}
}

// Build returns the full prompt text. It has no failure mode.
func (b *PromptBuilder) Build(sourceURL string, content *entity.SanitizedContent) string {
	candidates := content.CandidateImageURLs
	if len(candidates) > b.maxPromptImages {
		candidates = candidates[:b.maxPromptImages]
	}

	var sb strings.Builder
	sb.WriteString("You extract structured data from a real-estate listing web page.\n\n")
	fmt.Fprintf(&sb, "SOURCE URL: %s\n\n", sourceURL)

	sb.WriteString("CANDIDATE IMAGE URLS:\n")
	if len(candidates) == 0 {
		sb.WriteString("(none)\n")
	}
	for i, u := range candidates {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, u)
	}

	sb.WriteString("\nPAGE TEXT:\n")
	sb.WriteString(content.Text)
	sb.WriteString("\n\n")

	sb.WriteString("Return a JSON object with exactly these fields:\n")
	sb.WriteString(`- "title": string. A short listing title, at most 40 characters.` + "\n")
	sb.WriteString(`- "description": string. A summary of the property. You may use <br> for line breaks.` + "\n")
	sb.WriteString(`- "price": integer. The asking price in the local currency as a plain integer with no separators, symbols or units (e.g. 2800000).` + "\n")
	sb.WriteString(`- "sqm": number. The usable area in square meters. Convert from other units if needed.` + "\n")
	sb.WriteString(`- "layout": string. The room layout, e.g. "1 bedroom, 1 bathroom" or "Studio".` + "\n")
	sb.WriteString(`- "floor": string. The floor number as a string (e.g. "12"), or a label such as "high floor".` + "\n")
	fmt.Fprintf(&sb, `- "amenities": array of strings. Use ONLY these values: %s.`+"\n", strings.Join(entity.AmenityVocabulary, ", "))
	if len(candidates) == 0 {
		sb.WriteString(`- "image_urls": array of strings. No candidate images were found, return an empty array.` + "\n")
	} else {
		fmt.Fprintf(&sb, `- "image_urls": array of 1 to %d strings. Choose the photos that show the property, copied exactly from CANDIDATE IMAGE URLS. Never invent URLs.`+"\n", b.maxImages)
	}
	sb.WriteString(`- "building_name": string. The building or project name.` + "\n")
	sb.WriteString(`- "area": string. The neighbourhood, district or city.` + "\n\n")

	sb.WriteString("Rules:\n")
	sb.WriteString("- If a value is not found, use 0 for numeric fields, an empty string for text fields, and an empty array for collections.\n")
	sb.WriteString("- Do not guess values that are not supported by the page text.\n")
	sb.WriteString("- Respond with a single JSON object only. No explanations, no surrounding text, no markdown code fences.\n")

	return sb.String()
}
