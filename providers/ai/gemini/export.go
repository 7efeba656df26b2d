package gemini

import (
	"encoding/json"

	"github.com/tallesborges/zdx/providers/ai"
)

// BuildGenerateContentRequest converts a generic chat request into the
// wire JSON body Gemini's generateContent endpoint expects. It is exported
// for callers that need to embed the same request body in a different
// envelope, such as the Cloud Code Assist endpoint used by the OAuth
// geminicli provider.
func BuildGenerateContentRequest(request ai.ChatRequest) (json.RawMessage, error) {
	return json.Marshal(requestToGemini(request))
}

// ParseGenerateContentResponse parses a generateContent response body into
// the generic ai.ChatResponse shape, for callers that receive the same
// response body from a differently-wrapped endpoint.
func ParseGenerateContentResponse(data []byte) (*ai.ChatResponse, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return geminiToGeneric(resp), nil
}
