package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/ogurasousui/philocom-backoffice/internal/platform/config"
)

// Load は共有の AWS 設定を読み込みます。認証情報は SDK の既定チェーンから解決されます。
func Load(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("awsclient: load default config: %w", err)
	}
	return awsCfg, nil
}
