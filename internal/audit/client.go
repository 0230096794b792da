// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// ErrRateLimited marks a transient provider rate-limit error; the caller
// retries the same model with backoff before moving down the chain.
var ErrRateLimited = errors.New("rate limited")

// ErrModelFailure marks an unrecoverable failure of one model attempt.
var ErrModelFailure = errors.New("model failure")

const (
	defaultTimeout   = 300 * time.Second
	defaultMaxTokens = 8192
)

// Generator abstracts one structured LLM call so the fallback loop is
// testable without the AWS SDK. When onDelta is non-nil the response is
// requested incrementally and each text delta is delivered through it.
type Generator interface {
	Generate(ctx context.Context, modelID, system, prompt string, onDelta func(string)) (string, types.TokenUsage, error)
}

// BedrockAPI abstracts the Bedrock ConverseStream call for testing.
type BedrockAPI interface {
	ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error)
}

// BedrockClient implements Generator over the AWS Bedrock runtime.
type BedrockClient struct {
	api       BedrockAPI
	timeout   time.Duration
	maxTokens int
}

// ClientConfig configures the Bedrock client.
type ClientConfig struct {
	Region    string        // AWS region (required)
	Profile   string        // AWS credential profile (optional, default chain if empty)
	Timeout   time.Duration // Per-call timeout (default 300s)
	MaxTokens int           // Response token cap (default 8192)
}

// NewBedrockClient builds a client using the standard AWS credential
// chain.
func NewBedrockClient(ctx context.Context, cfg ClientConfig) (*BedrockClient, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrModelFailure)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrModelFailure, err)
	}

	return NewBedrockClientWithAPI(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

// NewBedrockClientWithAPI creates a client with a pre-configured API
// implementation. Used for testing with mocks.
func NewBedrockClientWithAPI(api BedrockAPI, cfg ClientConfig) *BedrockClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return &BedrockClient{api: api, timeout: timeout, maxTokens: maxTokens}
}

// Generate issues one ConverseStream call against the given model and
// accumulates the full response text. Throttling surfaces as
// ErrRateLimited; everything else as ErrModelFailure.
func (c *BedrockClient) Generate(ctx context.Context, modelID, system, prompt string, onDelta func(string)) (string, types.TokenUsage, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	input := &bedrockruntime.ConverseStreamInput{
		ModelId: aws.String(modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: system},
		},
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens: aws.Int32(int32(c.maxTokens)),
		},
	}

	output, err := c.api.ConverseStream(callCtx, input)
	if err != nil {
		return "", types.TokenUsage{}, classifyError(err)
	}

	return consumeStream(callCtx, output.GetStream(), onDelta)
}

func classifyError(err error) error {
	var throttle *brtypes.ThrottlingException
	if errors.As(err, &throttle) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	var accessDenied *brtypes.AccessDeniedException
	if errors.As(err, &accessDenied) {
		return fmt.Errorf("%w: credential or permission issue: %v", ErrModelFailure, err)
	}
	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: model not found: %v", ErrModelFailure, err)
	}
	return fmt.Errorf("%w: %v", ErrModelFailure, err)
}
