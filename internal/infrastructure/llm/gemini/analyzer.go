package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/infrastructure/resilience"
)

const suggestNamePrompt = "Suggest a concise, descriptive name for this file. " +
	"Use at most five words and respond with the name only, no punctuation around it."

type Analyzer struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	executor *resilience.Executor
}

func New(ctx context.Context, apiKey, modelName string, executor *resilience.Executor) (*Analyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Analyzer{
		client:   client,
		model:    client.GenerativeModel(modelName),
		executor: executor,
	}, nil
}

func (a *Analyzer) Close() error {
	return a.client.Close()
}

// Analyze sends the file content with the given prompt and returns the
// model's summary. Image and PDF bytes go to the model directly; other
// content is reduced to text first.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, mimeType, prompt string) (string, error) {
	parts, err := buildParts(data, mimeType, prompt)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "prepare analysis input", err)
	}
	return a.generate(ctx, "gemini.analyze", parts)
}

func (a *Analyzer) SuggestName(ctx context.Context, data []byte, mimeType string) (string, error) {
	parts, err := buildParts(data, mimeType, suggestNamePrompt)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "prepare naming input", err)
	}
	name, err := a.generate(ctx, "gemini.suggest_name", parts)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(name), `"'`), nil
}

func (a *Analyzer) generate(ctx context.Context, operation string, parts []genai.Part) (string, error) {
	var resp *genai.GenerateContentResponse
	call := func(callCtx context.Context) error {
		var err error
		resp, err = a.model.GenerateContent(callCtx, parts...)
		return err
	}

	var err error
	if a.executor != nil {
		err = a.executor.Execute(ctx, operation, call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}

	text := textFromResponse(resp)
	if text == "" {
		return "", fmt.Errorf("%s: empty model response", operation)
	}
	return text, nil
}

func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
