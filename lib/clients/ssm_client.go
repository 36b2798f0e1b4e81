package clients

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const defaultLocalstackEndpoint = "http://localhost:4566"

// NewSSMClient builds the Parameter Store client used for all runtime
// configuration. The region comes from the Lambda environment; when running
// locally the client talks to LocalStack instead (endpoint overridable via
// LOCALSTACK_ENDPOINT).
func NewSSMClient(isLocal bool) *ssm.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		panic("failed to load AWS configuration: " + err.Error())
	}

	if isLocal {
		endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
		if endpoint == "" {
			endpoint = defaultLocalstackEndpoint
		}
		cfg.BaseEndpoint = aws.String(endpoint)
	}

	return ssm.NewFromConfig(cfg)
}
