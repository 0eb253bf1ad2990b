package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// HandleAPIGateway answers an API Gateway proxy event.
func (e *Endpoint) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	query := url.Values{}
	for k, v := range req.QueryStringParameters {
		query.Set(k, v)
	}
	for k, vs := range req.MultiValueQueryStringParameters {
		query[k] = vs
	}

	reply := e.Respond(ctx, query)
	body, err := json.Marshal(reply.Body)
	if err != nil {
		reply = errorReply(http.StatusInternalServerError, "encode response")
		body = []byte(`{"error":"encode response"}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: reply.Status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}, nil
}
