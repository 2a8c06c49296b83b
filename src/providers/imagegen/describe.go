package imagegen

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultCaptionPrompt = "Describe this image in two or three sentences, covering the subject, setting, and notable details."

// Describe captions a captured image via the chat completions endpoint,
// passing the image as an inline data URL. imageB64 must be the bare base64
// payload without a data-URL prefix.
func (c *Client) Describe(ctx context.Context, model, imageB64 string) (string, error) {
	if imageB64 == "" {
		return "", errors.New("describe requires an image payload")
	}
	dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", imageB64)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: defaultCaptionPrompt,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		}},
	})
	if err != nil {
		return "", providerError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no caption returned")
	}
	return resp.Choices[0].Message.Content, nil
}
