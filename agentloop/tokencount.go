package agentloop

import "github.com/pkoukk/tiktoken-go"

// TiktokenCounter counts tokens with the real tokenizer for a given
// model. Model ids with no known encoding (e.g. non-OpenAI ids) use
// cl100k_base; CharEstimateCounter is used only when even that encoding
// cannot be loaded.
type TiktokenCounter struct {
	enc      *tiktoken.Tiktoken
	fallback CharEstimateCounter
}

// NewTiktokenCounter resolves the encoding for model. If the model is
// unrecognized it uses cl100k_base, and if that cannot be loaded either,
// Count silently falls back to the chars/4 estimator rather than failing
// session construction over a cosmetic detail.
func NewTiktokenCounter(model string) *TiktokenCounter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			enc = nil
		}
	}
	return &TiktokenCounter{enc: enc}
}

// Count returns the exact token count when a tokenizer was resolved,
// else the chars/4 estimate.
func (c *TiktokenCounter) Count(text string) int {
	if c.enc == nil {
		return c.fallback.Count(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}
