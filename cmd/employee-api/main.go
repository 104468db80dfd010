// Command employee-api は社員パネル API の Lambda 関数です。
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/ogurasousui/philocom-backoffice/internal/platform/app"
	"github.com/ogurasousui/philocom-backoffice/internal/platform/config"
	"github.com/ogurasousui/philocom-backoffice/internal/platform/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.New(ctx, cfg, logger.New(*cfg))
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	lambda.Start(application.EmployeeRouter().ServeEvent)
}
