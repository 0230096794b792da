// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package audit

import (
	"context"
	"fmt"
	"strings"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// EventStream abstracts the Bedrock ConverseStream event stream for
// testing.
type EventStream interface {
	Events() <-chan brtypes.ConverseStreamOutput
	Close() error
	Err() error
}

// consumeStream reads events from a ConverseStream, forwarding text deltas
// through onDelta when set, and returns the accumulated response text with
// the realized token usage. A cancelled context aborts the stream with an
// error so a partial response is never mistaken for a complete one.
func consumeStream(ctx context.Context, stream EventStream, onDelta func(string)) (string, types.TokenUsage, error) {
	var text strings.Builder
	var usage types.TokenUsage

	events := stream.Events()
	for {
		select {
		case <-ctx.Done():
			stream.Close()
			return "", types.TokenUsage{}, fmt.Errorf("%w: stream aborted: %v", ErrModelFailure, ctx.Err())

		case event, ok := <-events:
			if !ok {
				if err := stream.Err(); err != nil {
					return "", types.TokenUsage{}, classifyError(err)
				}
				return text.String(), usage, nil
			}

			switch v := event.(type) {
			case *brtypes.ConverseStreamOutputMemberContentBlockDelta:
				if delta, ok := v.Value.Delta.(*brtypes.ContentBlockDeltaMemberText); ok {
					text.WriteString(delta.Value)
					if onDelta != nil {
						onDelta(delta.Value)
					}
				}

			case *brtypes.ConverseStreamOutputMemberMetadata:
				if v.Value.Usage != nil {
					if v.Value.Usage.InputTokens != nil {
						usage.Prompt = int(*v.Value.Usage.InputTokens)
					}
					if v.Value.Usage.OutputTokens != nil {
						usage.Response = int(*v.Value.Usage.OutputTokens)
					}
					usage.Total = usage.Prompt + usage.Response
				}
			}
		}
	}
}
