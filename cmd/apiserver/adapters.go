package main

import (
	"context"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/storage/minio"
)

// minioHealth reports object storage reachability on /readyz.
type minioHealth struct {
	client *minio.MinIOClient
}

func (a minioHealth) Name() string {
	return "minio"
}

func (a minioHealth) Check(ctx context.Context) error {
	return a.client.HealthCheck(ctx)
}
