package store

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Open builds a Store from the configured driver name. The returned
// cleanup func releases any underlying connections and is safe to call
// even when it is a no-op (memory, dynamodb).
func Open(ctx context.Context, driver, tablePrefix, postgresURL string) (Store, func(), error) {
	switch driver {
	case "memory", "":
		return NewMemoryStore(), func() {}, nil
	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return NewDynamoStore(client, tablePrefix), func() {}, nil
	case "postgres":
		db, err := ConnectPostgres(postgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		pg, err := NewPostgresStore(db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("init postgres store: %w", err)
		}
		return pg, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
