// Package digest asks an OpenAI compatible model to summarize a post.
package digest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/config"
)

const requestTimeout = 2 * time.Minute

// Article is the data available to the prompt template.
type Article struct {
	Title     string
	Source    string
	Published string
	Url       string
	Labels    string
	Content   string
}

// ArticleFromPost builds the template data of a post with its resolved text.
func ArticleFromPost(p blog.Post, text string) Article {
	source := ""
	if p.Source != nil {
		source = p.Source.Name
	}
	return Article{
		Title:     p.Title,
		Source:    source,
		Published: blog.FormatDate(p.PublishedAt),
		Url:       p.Link,
		Labels:    strings.Join(p.Labels, ", "),
		Content:   text,
	}
}

type Digester struct {
	conf   config.AIConfig
	prompt *template.Template
	client openai.Client
}

// New validates the AI settings and prepares the client. The API key is
// taken from OPENAI_API_KEY by the openai client.
func New(conf config.AIConfig, opts ...option.RequestOption) (*Digester, error) {
	if conf.Model == "" {
		return nil, errors.New("AI model is not configured")
	}
	if strings.TrimSpace(conf.ArticlePrompt) == "" {
		return nil, errors.New("AI article prompt is not configured")
	}
	tmpl, err := template.New("article_prompt").Parse(conf.ArticlePrompt)
	if err != nil {
		return nil, fmt.Errorf("parse article prompt: %w", err)
	}

	if conf.BaseUrl != "" {
		opts = append([]option.RequestOption{option.WithBaseURL(conf.BaseUrl)}, opts...)
	}
	return &Digester{conf: conf, prompt: tmpl, client: openai.NewClient(opts...)}, nil
}

// Prompt renders the article prompt for a.
func (d *Digester) Prompt(a Article) (string, error) {
	var buf bytes.Buffer
	if err := d.prompt.Execute(&buf, a); err != nil {
		return "", fmt.Errorf("render article prompt: %w", err)
	}
	return buf.String(), nil
}

// Run writes the model answer for a to out, streaming it when configured.
func (d *Digester) Run(ctx context.Context, a Article, out io.Writer) error {
	prompt, err := d.Prompt(a)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: d.conf.Model,
	}

	if d.conf.Stream {
		stream := d.client.Chat.Completions.NewStreaming(timeoutCtx, params)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				fmt.Fprint(out, chunk.Choices[0].Delta.Content)
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("stream error: %w", err)
		}
		fmt.Fprintln(out)
		return nil
	}

	completion, err := d.client.Chat.Completions.New(timeoutCtx, params)
	if err != nil {
		return fmt.Errorf("failed to get AI completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return errors.New("AI returned no choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return errors.New("AI returned empty content")
	}
	fmt.Fprintln(out, content)
	return nil
}
