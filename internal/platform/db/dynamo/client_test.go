package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestNewClient_Endpoint(t *testing.T) {
	t.Parallel()

	client := NewClient(aws.Config{Region: "ap-northeast-1"}, "http://localhost:8000")
	opts := client.Options()

	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://localhost:8000" {
		t.Fatalf("expected base endpoint to be set, got %v", opts.BaseEndpoint)
	}
	if opts.Region != "ap-northeast-1" {
		t.Fatalf("unexpected region: %s", opts.Region)
	}
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	t.Parallel()

	client := NewClient(aws.Config{Region: "ap-northeast-1"}, "")
	if client.Options().BaseEndpoint != nil {
		t.Fatalf("expected no base endpoint override")
	}
}
