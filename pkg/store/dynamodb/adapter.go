package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("dynamodb adapter is closed")

// Adapter provides DynamoDB connectivity.
type Adapter struct {
	client  *dynamodb.Client
	logger  logger.Logger
	timeout time.Duration
	mu      sync.RWMutex
	closed  bool
}

// Config holds DynamoDB adapter configuration.
type Config struct {
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	SessionToken     string
	OperationTimeout time.Duration
}

// Cosa fa: costruisce client DynamoDB (AWS SDK v2) con supporto endpoint custom.
// Cosa NON fa: non crea tabelle o throughput policy.
// Esempio minimo: adapter, err := dynamodb.NewAdapter(cfg, log)
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("aws region is required")
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	var opts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := dynamodb.NewFromConfig(awsCfg, opts...)
	adapter := &Adapter{client: client, logger: log, timeout: cfg.OperationTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OperationTimeout)
	defer cancel()
	if err := adapter.Ping(ctx); err != nil {
		return nil, err
	}

	log.Info("DynamoDB adapter initialized", "region", cfg.Region, "endpoint", cfg.Endpoint)
	return adapter, nil
}

// Client returns the underlying SDK client.
func (a *Adapter) Client() *dynamodb.Client {
	return a.client
}

// Ping lists at most one table to prove the endpoint and credentials work.
func (a *Adapter) Ping(ctx context.Context) error {
	opCtx, cancel, err := a.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	if _, err := a.client.ListTables(opCtx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)}); err != nil {
		return fmt.Errorf("dynamodb ping failed: %w", err)
	}
	return nil
}

// HealthCheck pings with a 2s bound.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Ping(hcCtx); err != nil {
		a.logger.Error("DynamoDB health check failed", "error", err)
		return fmt.Errorf("dynamodb health check failed: %w", err)
	}
	return nil
}

// Close marks the adapter closed; later operations fail with ErrClosed.
// The SDK client holds no connections of its own to release.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *Adapter) PutItem(ctx context.Context, input *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	opCtx, cancel, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return a.client.PutItem(opCtx, input)
}

func (a *Adapter) GetItem(ctx context.Context, input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	opCtx, cancel, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return a.client.GetItem(opCtx, input)
}

func (a *Adapter) UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
	opCtx, cancel, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return a.client.UpdateItem(opCtx, input)
}

func (a *Adapter) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
	opCtx, cancel, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return a.client.DeleteItem(opCtx, input)
}

// BatchWriteItem runs one batch call.
//
// Cosa fa: esegue un BatchWriteItem (massimo 25 richieste per chiamata).
// Cosa NON fa: non ritenta gli UnprocessedItems, li restituisce al chiamante.
// Esempio minimo: out, err := adapter.BatchWriteItem(ctx, input)
func (a *Adapter) BatchWriteItem(ctx context.Context, input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
	opCtx, cancel, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return a.client.BatchWriteItem(opCtx, input)
}

// Scan reads one page of a table.
//
// Cosa fa: esegue una singola pagina di Scan (al massimo 1 MB di dati).
// Cosa NON fa: non segue LastEvaluatedKey; il chiamante la ripassa come
// ExclusiveStartKey per la pagina successiva.
// Esempio minimo: out, err := adapter.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String("projects")})
func (a *Adapter) Scan(ctx context.Context, input *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
	opCtx, cancel, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return a.client.Scan(opCtx, input)
}

// begin rejects calls on a closed adapter and applies the operation timeout.
func (a *Adapter) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return nil, nil, ErrClosed
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	return opCtx, cancel, nil
}

func (a *Adapter) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

// IsConditionFailed reports whether a conditional write was rejected.
func IsConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// IsThrottlingError reports whether the table rejected a call for exceeding
// its provisioned throughput.
func IsThrottlingError(err error) bool {
	if err == nil {
		return false
	}
	var pte *types.ProvisionedThroughputExceededException
	return errors.As(err, &pte)
}
