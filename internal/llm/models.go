package llm

import (
	"context"
	"encoding/json"
	"net/http"
)

type ModelPricing struct {
	Prompt     json.Number `json:"prompt"`
	Completion json.Number `json:"completion"`
}

// ModelMeta describes one model from the upstream catalogue.
type ModelMeta struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	ContextLength int          `json:"context_length"`
	Pricing       ModelPricing `json:"pricing"`
}

// GetModels lists the models the upstream API exposes. It is not retried.
func (c *Client) GetModels(ctx context.Context) ([]ModelMeta, error) {
	resp, err := c.do(ctx, http.MethodGet, "/models", nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errorFromResponse(resp)
	}

	var body struct {
		Data []ModelMeta `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Kind: KindAPI, Code: CodeInvalidResponse, StatusCode: 500, Message: "undecodable models response", Err: err}
	}
	if body.Data == nil {
		return []ModelMeta{}, nil
	}
	return body.Data, nil
}
