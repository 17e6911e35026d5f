package rewrite

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Rewriter using Anthropic Claude
type AnthropicRewriter struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicRewriter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicRewriter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicRewriter{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (r *AnthropicRewriter) batchSize() int {
	if r.options.BatchSize > 0 {
		return r.options.BatchSize
	}
	return DefaultBatchSize
}

func (r *AnthropicRewriter) Rewrite(
	ctx context.Context,
	items []RewriteItem,
) ([]RewriteResult, error) {
	if len(items) == 0 {
		return []RewriteResult{}, nil
	}

	batchSize := r.batchSize()
	if len(items) <= batchSize {
		return r.rewriteBatch(ctx, items)
	}

	var allResults []RewriteResult
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		batch := items[i:end]
		results, err := r.rewriteBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i/batchSize, err)
		}
		allResults = append(allResults, results...)
	}

	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].Index < allResults[j].Index
	})

	return allResults, nil
}

// Items are split into batches of BatchSize (default 50). Each batch becomes
// one API request. Workers (up to concurrency) pull batches from a shared queue.
func (r *AnthropicRewriter) RewriteWithConcurrency(
	ctx context.Context,
	items []RewriteItem,
	concurrency int,
) ([]RewriteResult, error) {
	if len(items) == 0 {
		return []RewriteResult{}, nil
	}

	if concurrency <= 0 {
		concurrency = 3
	}

	batchSize := r.batchSize()
	var batches [][]RewriteItem
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}

	if len(batches) == 1 {
		return r.rewriteBatch(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []RewriteResult
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := r.rewriteBatch(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]batchResult, 0, len(batches))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf(
				"batch %d failed: %w",
				result.Index,
				result.Error,
			)
			cancel()
		}
		if result.Error == nil {
			results = append(results, result)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	var allResults []RewriteResult
	for _, r := range results {
		allResults = append(allResults, r.Results...)
	}

	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].Index < allResults[j].Index
	})

	return allResults, nil
}

func (r *AnthropicRewriter) rewriteBatch(
	ctx context.Context,
	items []RewriteItem,
) ([]RewriteResult, error) {
	prompt := BuildPrompt(r.options, items)

	message, err := r.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     r.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("rewrite failed: %w", err)
	}

	return r.parseResponse(message, len(items))
}

func (r *AnthropicRewriter) parseResponse(
	message *anthropic.Message,
	expectedCount int,
) ([]RewriteResult, error) {
	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Anthropic response")
	}

	responseText = cleanJSONResponse(responseText)

	results, err := extractRewriteResults(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	if len(results) != expectedCount {
		return nil, fmt.Errorf(
			"expected %d results, got %d",
			expectedCount,
			len(results),
		)
	}

	return results, nil
}

func (r *AnthropicRewriter) Close() error {
	return nil
}
