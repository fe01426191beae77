package letters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/httpx"
	"present-delivery-service/internal/platform/obs"
	"present-delivery-service/internal/ports"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"golang.org/x/time/rate"
)

// The model must answer with JSON only. Addresses are requested in kanji so
// the GSI geocoder can resolve them.
const systemPrompt = `
あなたはサンタクロース宛ての手紙から情報を取得するエージェントです。
手紙から欲しいプレゼントと住所を抜き出し、JSONの形で出力します。
次の<rule>を必ず守ってください。

<rule>
JSON以外を絶対に出力してはいけません。
手紙からはプレゼント名と住所だけを抽出し、他の情報は絶対に抽出してはいけません。
住所は必ず漢字で出力します。
出力のJSONフォーマットを必ず守る必要があります。
</rule>

出力の例は<example>の様になります。

<example>
{
  "present": "ポケモンカード",
  "address": "宮城県仙台市青葉区緑の丘0-0-00"
}
</example>
`

type converser interface {
	Converse(ctx context.Context, in *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type letterJSON struct {
	Present *string `json:"present"`
	Address *string `json:"address"`
}

// BedrockExtractor implements LetterExtractor with the Bedrock Converse API.
type BedrockExtractor struct {
	client  converser
	modelID string
	policy  httpx.CallPolicy
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewBedrockExtractor applies the extraction policy around each call:
// Timeout bounds the whole Converse call including SDK retries and
// RatePerSecond paces calls. MaxAttempts belongs to the client (see
// NewBedrockClient); backoff is left to the SDK retryer.
func NewBedrockExtractor(client converser, modelID string, policy httpx.CallPolicy, logger *slog.Logger) *BedrockExtractor {
	b := &BedrockExtractor{
		client:  client,
		modelID: modelID,
		policy:  policy,
		logger:  logger.With("component", "bedrock_extractor"),
	}
	if policy.RatePerSecond > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(policy.RatePerSecond), 1)
	}
	return b
}

// NewBedrockClient uses adaptive retry; the model endpoint throttles well
// before the standard retryer gives up.
func NewBedrockClient(cfg aws.Config, region string, maxAttempts int) *bedrockruntime.Client {
	return bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		if region != "" {
			o.Region = region
		}
		o.RetryMode = aws.RetryModeAdaptive
		if maxAttempts > 0 {
			o.RetryMaxAttempts = maxAttempts
		}
		o.Retryer = retry.NewAdaptiveMode(func(ao *retry.AdaptiveModeOptions) {
			ao.StandardOptions = append(ao.StandardOptions, func(so *retry.StandardOptions) {
				if maxAttempts > 0 {
					so.MaxAttempts = maxAttempts
				}
			})
		})
	})
}

func (b *BedrockExtractor) Extract(ctx context.Context, image []byte) (_ ports.LetterInfo, err error) {
	const op = "bedrock.Extract"
	defer obs.Time(ctx, b.logger, op)(&err)

	if len(image) == 0 {
		return ports.LetterInfo{}, errs.ExtractionError(op, errors.New("empty image"))
	}

	if b.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.policy.Timeout)
		defer cancel()
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return ports.LetterInfo{}, errs.ExtractionError(op, fmt.Errorf("rate limit: %w", err))
		}
	}

	out, err := b.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.modelID),
		Messages: []types.Message{{
			Role: types.ConversationRoleUser,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberImage{Value: types.ImageBlock{
					Format: types.ImageFormatPng,
					Source: &types.ImageSourceMemberBytes{Value: image},
				}},
			},
		}},
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: systemPrompt},
		},
	})
	if err != nil {
		return ports.LetterInfo{}, errs.ExtractionError(op, fmt.Errorf("converse: %w", err))
	}

	text, err := responseText(out)
	if err != nil {
		return ports.LetterInfo{}, errs.ExtractionError(op, err)
	}
	b.logger.InfoContext(ctx, "model response", "response", text)

	info, err := parseLetter(text)
	if err != nil {
		return ports.LetterInfo{}, errs.ExtractionError(op, err)
	}
	return info, nil
}

func responseText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("empty converse output")
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("unexpected converse output %T", out.Output)
	}
	if len(msg.Value.Content) == 0 {
		return "", errors.New("converse message has no content")
	}
	block, ok := msg.Value.Content[0].(*types.ContentBlockMemberText)
	if !ok {
		return "", fmt.Errorf("unexpected content block %T", msg.Value.Content[0])
	}
	return block.Value, nil
}

func parseLetter(text string) (ports.LetterInfo, error) {
	var decoded letterJSON
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &decoded); err != nil {
		return ports.LetterInfo{}, fmt.Errorf("decode model output: %w", err)
	}
	if decoded.Present == nil {
		return ports.LetterInfo{}, errors.New(`model output has no "present"`)
	}
	if decoded.Address == nil {
		return ports.LetterInfo{}, errors.New(`model output has no "address"`)
	}
	return ports.LetterInfo{PresentName: *decoded.Present, Address: *decoded.Address}, nil
}
