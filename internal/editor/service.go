package editor

import (
	"context"
	"strings"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// FinishReasonStop is the finish reason of a normal completion.
const FinishReasonStop = "STOP"

// Service is the generative edit collaborator. One call per request of
// kind PointEdit, Filter, Adjustment or Enhancement.
type Service interface {
	Generate(ctx context.Context, req *ServiceRequest) (*Response, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, req *ServiceRequest) (*Response, error)

// Generate calls f.
func (f ServiceFunc) Generate(ctx context.Context, req *ServiceRequest) (*Response, error) {
	return f(ctx, req)
}

// ServiceRequest is what the session sends to the edit service.
type ServiceRequest struct {
	Kind  Kind
	Image *imaging.Artifact

	// Instruction is the user's (or preset's) prompt. Empty for
	// enhancement.
	Instruction string

	// Hint is the hotspot in natural pixels, set for point edits only.
	Hint *coords.Pixel
}

// Response is the edit service's answer, reduced to the fields the
// classification looks at.
type Response struct {
	// BlockReason is set when the service refused the request.
	BlockReason  string
	BlockMessage string

	// Parts are the content parts of the first candidate.
	Parts []Part

	// FinishReason of the first candidate; empty when absent.
	FinishReason string
}

// Part is one content part: an inline image or text.
type Part struct {
	MIMEType string
	Data     []byte
	Text     string
}

// InlineImage is the image payload of a successful response.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Classify interprets a response in strict priority order:
//
//  1. A block reason -> *BlockedError
//  2. An inline image part -> success
//  3. A finish reason other than STOP -> *IncompleteError
//  4. Anything else -> *EmptyError carrying the reply text, if any
func Classify(resp *Response) (*InlineImage, error) {
	if resp == nil {
		return nil, &EmptyError{}
	}

	if resp.BlockReason != "" {
		return nil, &BlockedError{Reason: resp.BlockReason, Message: resp.BlockMessage}
	}

	for _, p := range resp.Parts {
		if len(p.Data) > 0 {
			return &InlineImage{MIMEType: p.MIMEType, Data: p.Data}, nil
		}
	}

	if resp.FinishReason != "" && resp.FinishReason != FinishReasonStop {
		return nil, &IncompleteError{Reason: resp.FinishReason}
	}

	var text []string
	for _, p := range resp.Parts {
		if t := strings.TrimSpace(p.Text); t != "" {
			text = append(text, t)
		}
	}
	return nil, &EmptyError{Text: strings.Join(text, "\n")}
}
