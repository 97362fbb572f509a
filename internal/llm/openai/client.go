package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resumai/internal/common"
	"resumai/internal/llm"
)

// AnalyzeResume implements the analysis mode of llm.Analyzer using text-only
// chat/completions. The raw JSON content is returned alongside the validated
// result so callers can log rejected documents.
func (c *Client) AnalyzeResume(ctx context.Context, req llm.AnalyzeRequest) (llm.AnalysisResult, []byte, error) {
	sys, user := llm.BuildAnalysisPrompts(req)
	raw, err := c.complete(ctx, "llm.analyze", sys, user, llm.BuildAnalysisJSONSchema(), len(req.ResumeText))
	if err != nil {
		return llm.AnalysisResult{}, raw, err
	}
	out, err := llm.DecodeAnalysis(raw)
	if err != nil {
		return llm.AnalysisResult{}, raw, err
	}
	return out, raw, nil
}

// MatchJob implements the match mode of llm.Analyzer.
func (c *Client) MatchJob(ctx context.Context, req llm.MatchRequest) (llm.JobMatchResult, []byte, error) {
	sys, user := llm.BuildMatchPrompts(req)
	raw, err := c.complete(ctx, "llm.match", sys, user, llm.BuildJobMatchJSONSchema(), len(req.ResumeText)+len(req.JobDescription))
	if err != nil {
		return llm.JobMatchResult{}, raw, err
	}
	out, err := llm.DecodeJobMatch(raw)
	if err != nil {
		return llm.JobMatchResult{}, raw, err
	}
	return out, raw, nil
}

// complete runs one chat/completions call and returns the message content.
// Transport failures and envelope problems are ErrOracleTransport; schema
// checks on the content happen in the caller.
func (c *Client) complete(ctx context.Context, op, system, user string, schema map[string]any, textLen int) ([]byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info(op+".start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", textLen,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error(op+".http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("%w: %v", common.ErrOracleTransport, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error(op+".decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return raw, fmt.Errorf("%w: decode response envelope: %v", common.ErrOracleTransport, err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error(op+".no_choices",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return raw, fmt.Errorf("%w: no choices in response", common.ErrOracleTransport)
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info(op+".ok",
		"req_id", rid,
		"content_bytes", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return []byte(content), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
