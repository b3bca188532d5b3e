// Package generation produces grounded answers from retrieved context.
// Every failure path terminates in a fixed user-facing string; nothing
// escapes as an error once a Generator is constructed.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sage/internal/port"
)

// RefusalMessage is the canonical response when the knowledge base cannot
// ground an answer. Guard 1 (empty context) and Guard 3 (hedge scan) both
// resolve to it.
const RefusalMessage = "I don't have that information in my knowledge base. " +
	"Please contact the university administration or check the official website."

const (
	timeoutMessage      = "Response generation timed out. Please try a simpler question."
	backendErrorMessage = "The language model encountered an error. Please try again."
	emptyOutputMessage  = "I couldn't generate a response. Please try rephrasing your question."
)

// DefaultAllowedModels is the hard safety allow-list of approved quantized
// models.
var DefaultAllowedModels = []string{
	"llama3.1:8b",
	"deepseek-coder:6.7b",
}

const systemPrompt = `You are SAGE, a knowledgeable assistant for university students and staff.

YOUR CORE RULES (NEVER VIOLATE):
1. Answer ONLY using information from the provided Context section
2. If the Context does not contain the answer, respond with:
   "I don't have that information in my knowledge base. Please contact the university administration or check the official website."
3. Do NOT make assumptions or infer missing details
4. Do NOT use external knowledge
5. If the question is ambiguous, ask for clarification

RESPONSE GUIDELINES:
- Be concise and factual
- Use only the provided context
- Maintain a professional tone

IMPORTANT OUTPUT RULE:
- Do NOT mention chunk numbers, labels (e.g., [Chunk 1]), or the word "context"
- Present the answer as a natural response to the user

FORBIDDEN BEHAVIORS:
- No hallucination
- No guessing
- No fabricated details`

// Generator turns (question, retrieved context) into a final answer string
// through an approved model. Stateless; each call is independent.
type Generator struct {
	completer  port.Completer
	model      string
	timeout    time.Duration
	suspicious SuspicionFunc
}

// NewGenerator creates a generator for the given model. The model must
// appear in allowed (DefaultAllowedModels when allowed is empty); a
// disallowed model is a configuration bug and fails construction.
func NewGenerator(completer port.Completer, model string, timeout time.Duration, allowed []string) (*Generator, error) {
	if len(allowed) == 0 {
		allowed = DefaultAllowedModels
	}

	permitted := false
	for _, name := range allowed {
		if name == model {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, fmt.Errorf("model %q is not allowed (allowed models: %s)",
			model, strings.Join(allowed, ", "))
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Generator{
		completer:  completer,
		model:      model,
		timeout:    timeout,
		suspicious: HedgeScan,
	}, nil
}

// SetSuspicion replaces the post-generation hallucination check. The default
// is HedgeScan.
func (g *Generator) SetSuspicion(fn SuspicionFunc) {
	if fn != nil {
		g.suspicious = fn
	}
}

// ModelName returns the fully-qualified model this generator invokes.
func (g *Generator) ModelName() string {
	return g.model
}

// Generate produces a grounded answer for the query from the retrieved
// context chunks. It always returns a string; no context means an immediate
// refusal without touching the backend.
func (g *Generator) Generate(ctx context.Context, query string, chunks []string) string {
	usable := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			usable = append(usable, chunk)
		}
	}
	// Guard 1: no usable context, refuse safely without a backend call.
	if len(usable) == 0 {
		return RefusalMessage
	}

	prompt := buildPrompt(query, usable)

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	output, err := g.completer.Complete(cctx, g.model, prompt)
	// Guard 2: backend failures map to fixed messages, never retried here.
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return timeoutMessage
		}
		return backendErrorMessage
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return emptyOutputMessage
	}

	// Guard 3: hedging language signals the model reached outside the
	// supplied context.
	if g.suspicious(output) {
		return RefusalMessage
	}

	return output
}

func buildPrompt(query string, chunks []string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n===== CONTEXT =====\n")
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Chunk %d]\n%s", i+1, chunk)
	}
	b.WriteString("\n\n===== USER QUESTION =====\n")
	b.WriteString(query)
	b.WriteString("\n\n===== YOUR ANSWER =====\n")
	return b.String()
}
