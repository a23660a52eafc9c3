package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"plotbot/infrastructure/config"
	"plotbot/infrastructure/di"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
	coldStart = true
)

func init() {
	start := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The execution environment is discarded without notice, so the
	// container's cleanup never runs; Flush after each event instead.
	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	mux, ok := container.Handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(mux)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(start)),
		zap.String("function", cfg.LambdaFunctionName),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	container.Logger.Debug("Lambda received request",
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Bool("cold_start", coldStart),
	)
	coldStart = false

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	container.Flush(ctx)
	if err != nil {
		container.Logger.Error("Lambda proxy failed", zap.Error(err))
	}
	return resp, err
}

func main() {
	lambda.Start(Handler)
}
