// Command paradox-lambda serves the sentence endpoint behind AWS API Gateway.
package main

import (
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/metalagman/paradox/internal/logging"
	"github.com/metalagman/paradox/internal/server"
)

func main() {
	logging.Init(false, logging.FormatJSON)
	endpoint := server.New(server.Config{
		Client: &http.Client{Timeout: 25 * time.Second},
	})
	lambda.Start(endpoint.HandleAPIGateway)
}
