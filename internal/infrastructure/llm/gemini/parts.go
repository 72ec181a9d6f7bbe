package gemini

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/ledongthuc/pdf"
)

// maxInlineText caps how much extracted text rides along with a prompt.
const maxInlineText = 64 << 10

// buildParts turns raw file bytes into prompt parts the model accepts.
// Images travel as inline blobs. PDFs are reduced to their plain text;
// a PDF that yields no text falls back to the raw blob. Anything else
// must be valid UTF-8 text.
func buildParts(data []byte, mimeType, prompt string) ([]genai.Part, error) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return []genai.Part{
			genai.Text(prompt),
			genai.Blob{MIMEType: mimeType, Data: data},
		}, nil

	case mimeType == "application/pdf":
		text, err := extractPDFText(data)
		if err != nil || text == "" {
			return []genai.Part{
				genai.Text(prompt),
				genai.Blob{MIMEType: mimeType, Data: data},
			}, nil
		}
		return []genai.Part{
			genai.Text(prompt),
			genai.Text(clampText(text)),
		}, nil

	default:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("unsupported binary content type %q", mimeType)
		}
		return []genai.Part{
			genai.Text(prompt),
			genai.Text(clampText(string(data))),
		}, nil
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	body, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func clampText(text string) string {
	if len(text) <= maxInlineText {
		return text
	}
	cut := text[:maxInlineText]
	// Do not split a multi-byte rune at the boundary.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
