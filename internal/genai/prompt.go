// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"bytes"
	"text/template"
)

const trendPrompt = `What is one of the most viral, post-worthy, and trending topics in the AI space right now? Only provide the topic name or concept, nothing else. For example: "AI Agents taking over software development". Be specific and concise.`

// postPromptTmpl asks for a storytelling LinkedIn post anchored in a movie,
// series, or everyday experience.
var postPromptTmpl = template.Must(template.New("post").Parse(`Create a storytelling-style LinkedIn post about the trend: "{{.Topic}}".
The post should be inspired by a movie, series, or a relatable real-life story.

Style requirements:
1. Relatable Narrative: Start with a hook that draws the reader in, using a story from a popular movie, TV show, or a common life experience.
2. Connect to AI Trend: Smoothly transition from the story to the AI trend: "{{.Topic}}".
3. Clear Takeaway: Provide a clear insight or takeaway for the reader about the significance of this trend.
4. Formatting: Use short paragraphs, bullet points, or emojis to make it easy to read.
5. CTA: Include an optional, non-salesy call-to-action at the end, like "What are your thoughts?" or "What movie does this remind you of?".
6. Hashtags: Include 3-5 relevant hashtags at the end.

Generate the post text now.
`))

// imagePromptTmpl turns a finished post into a single-sentence prompt for
// the image model.
var imagePromptTmpl = template.Must(template.New("image").Parse(`Based on the following LinkedIn post, create a short, descriptive prompt for an AI image generator. The prompt should capture the core theme in a "movie-poster" style, with a futuristic or dramatic storytelling angle. The prompt should be a single sentence.

Post: "{{.Post}}"

Image Prompt:`))

func renderPostPrompt(topic string) (string, error) {
	return render(postPromptTmpl, struct{ Topic string }{Topic: topic})
}

func renderImagePrompt(post string) (string, error) {
	return render(imagePromptTmpl, struct{ Post string }{Post: post})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
