package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/graph-to-compose/composer/internal/api"
	"github.com/graph-to-compose/composer/internal/logger"
	"github.com/graph-to-compose/composer/internal/metrics"
)

func main() {
	h := api.New(metrics.New(), logger.Default)
	lambda.Start(h.Handle)
}
