package bedrock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	ProviderName = "aws_bedrock"

	DefaultRegion = "us-west-2"
	EnvRegion     = "AWS_REGION"

	contentTypeJSON = "application/json"
)

// invoker holds the settings resolved at construction and runs one
// InvokeModel call with freshly loaded credentials.
type invoker struct {
	aws        config.AWSConfig
	region     string
	httpClient *http.Client
	logger     zerolog.Logger
}

func newInvoker(awsCfg config.AWSConfig, httpClient *http.Client, logger zerolog.Logger) invoker {
	return invoker{
		aws:        awsCfg,
		region:     config.FirstNonEmpty(awsCfg.Region, os.Getenv(EnvRegion), DefaultRegion),
		httpClient: httpClient,
		logger:     logger,
	}
}

func (i invoker) loadOptions() []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(i.region)}
	if i.aws.HasStaticCredentials() {
		secret, _ := i.aws.SecretAccessKey.Resolve()
		token, _ := i.aws.SessionToken.Resolve()
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(i.aws.AccessKeyID, secret, token)))
	}
	if i.aws.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(i.aws.EndpointURL))
	}
	if i.httpClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(i.httpClient))
	}
	return opts
}

// invoke sends body to the model and returns the raw response body.
func (i invoker) invoke(ctx context.Context, model string, body []byte) ([]byte, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, i.loadOptions()...)
	if err != nil {
		return nil, llm.NewProviderError(ProviderName, 0, fmt.Errorf("loading aws configuration: %w", err))
	}
	client := bedrockruntime.NewFromConfig(awsCfg)

	start := time.Now()
	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
		Body:        body,
	})
	i.logger.Debug().
		Str("model", model).
		Str("region", i.region).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("invoke model")
	if err != nil {
		return nil, convertError(err)
	}
	return out.Body, nil
}

// convertError keeps the HTTP status of service errors. Throttling is
// reported as 429 when no response status is available.
func convertError(err error) error {
	status := 0
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}
	var apiErr smithy.APIError
	if status == 0 && errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); {
		case strings.Contains(code, "Throttling"), strings.Contains(code, "TooManyRequests"):
			status = http.StatusTooManyRequests
		case strings.Contains(code, "AccessDenied"):
			status = http.StatusForbidden
		case strings.Contains(code, "ResourceNotFound"):
			status = http.StatusNotFound
		}
	}
	return llm.NewProviderError(ProviderName, status, err)
}

// modelFamily returns the vendor segment of a Bedrock model ID, skipping
// a cross-region inference prefix such as "us.".
func modelFamily(model string) string {
	parts := strings.Split(model, ".")
	if len(parts) > 2 && len(parts[0]) == 2 {
		return parts[1]
	}
	return parts[0]
}
