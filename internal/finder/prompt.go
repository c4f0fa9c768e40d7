// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finder

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// systemPrompt frames the model for every request.
const systemPrompt = `You are an expert in manufacturing and supply chain management. You know the credible manufacturers across industries, their reputations and their product quality. Give accurate, detailed recommendations grounded in industry standards.`

// promptTmpl is the per-part prompt. It asks for a single JSON object with a
// fixed layout; the decoder performs strict structural decoding only.
var promptTmpl = template.Must(template.New("manufacturers").Parse(`Identify the most credible manufacturers for the following part.

Manufacturing Part Number (MPN): {{.PartNumber}}
Model/Product Description: {{.Description}}
Quantity Required: {{.Quantity}}

Provide:
1. Up to {{.MaxResults}} credible manufacturers for this part, most credible first
2. A credibility score (0-100) for each manufacturer based on:
   - Industry reputation
   - Product quality
   - Supply chain reliability
   - Market presence
3. The key strengths of each manufacturer
4. Important considerations for each (minimum order quantities, lead times, certifications)
5. An overall recommendation and the reasoning behind it
6. Any additional notes relevant to sourcing this part

Respond with a single JSON object and no text outside it, using exactly this structure:
{
  "manufacturers": [
    {
      "name": "Manufacturer Name",
      "credibility_score": 95,
      "strengths": ["strength1", "strength2"],
      "considerations": "Any important notes"
    }
  ],
  "overall_recommendation": "Your top recommendation and why",
  "additional_info": "Any other relevant information"
}
`))

// promptData is the template input.
type promptData struct {
	PartNumber  string
	Description string
	Quantity    int
	MaxResults  int
}

// renderPrompt executes the prompt template for one part.
func renderPrompt(req types.PartRequest, maxResults int) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, promptData{
		PartNumber:  req.PartNumber,
		Description: req.Description,
		Quantity:    req.Quantity,
		MaxResults:  maxResults,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
