package repo

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/cockroachdb/errors"
	"github.com/gammazero/workerpool"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

const (
	deliveriesContainer = "webhook_deliveries"
	defaultPoolSize     = 16
)

// Cosmo keeps webhook deliveries in a Cosmos DB container partitioned by
// provider. The delivery id is the item id, a redelivery is rejected with 409.
type Cosmo struct {
	cl          *azcosmos.DatabaseClient
	setupCalled bool
}

func NewCosmo(
	cl *azcosmos.Client,
	dbName string,
) (*Cosmo, error) {
	_, err := cl.CreateDatabase(context.Background(), azcosmos.DatabaseProperties{
		ID: dbName,
	}, &azcosmos.CreateDatabaseOptions{})
	if err = ignoreConflict(err); err != nil {
		return nil, errors.Wrap(err, "can not create cosmos database")
	}

	db, err := cl.NewDatabase(dbName)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	c := &Cosmo{cl: db}

	if err = c.setupContainers(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Cosmo) setupContainers() error {
	if c.setupCalled {
		return nil
	}

	_, err := c.cl.CreateContainer(context.Background(), azcosmos.ContainerProperties{
		ID: deliveriesContainer,
		PartitionKeyDefinition: azcosmos.PartitionKeyDefinition{
			Paths: []string{"/provider"},
		},
	}, &azcosmos.CreateContainerOptions{})
	if err = ignoreConflict(err); err != nil {
		return errors.Wrap(err, "can not create deliveries container")
	}

	c.setupCalled = true

	return nil
}

func isConflict(err error) bool {
	var azureErr *azcore.ResponseError

	return errors.As(err, &azureErr) && azureErr.StatusCode == http.StatusConflict
}

func ignoreConflict(err error) error {
	if err == nil || isConflict(err) {
		return nil
	}

	return err
}

func (c *Cosmo) container() (*azcosmos.ContainerClient, error) {
	if err := c.setupContainers(); err != nil {
		return nil, err
	}

	return c.cl.NewContainer(deliveriesContainer)
}

// Record stores a delivery and reports false when the id was seen before.
func (c *Cosmo) Record(ctx context.Context, delivery *database.WebhookDelivery) (bool, error) {
	container, err := c.container()
	if err != nil {
		return false, err
	}

	b, err := json.Marshal(delivery)
	if err != nil {
		return false, errors.WithStack(err)
	}

	_, err = container.CreateItem(ctx, azcosmos.NewPartitionKeyString(delivery.Provider), b, nil)
	if err != nil {
		if isConflict(err) {
			return false, nil
		}

		return false, errors.Wrapf(err, "can not record delivery %s", delivery.ID)
	}

	return true, nil
}

func (c *Cosmo) MarkProcessed(ctx context.Context, deliveries []*database.WebhookDelivery) error {
	container, err := c.container()
	if err != nil {
		return err
	}

	pool := workerpool.New(defaultPoolSize)

	var (
		mu       sync.Mutex
		finalErr error
	)

	for _, d := range deliveries {
		pool.Submit(func() {
			d.Processed = true

			b, marshalErr := json.Marshal(d)
			if marshalErr != nil {
				mu.Lock()
				finalErr = errors.Join(finalErr, marshalErr)
				mu.Unlock()

				return
			}

			if _, upsertErr := container.UpsertItem(ctx, azcosmos.NewPartitionKeyString(d.Provider), b, nil); upsertErr != nil {
				mu.Lock()
				finalErr = errors.Join(finalErr, errors.Wrapf(upsertErr, "delivery %s", d.ID))
				mu.Unlock()
			}
		})
	}

	pool.StopWait()

	return finalErr
}

func (c *Cosmo) ListUnprocessed(ctx context.Context, provider string) ([]*database.WebhookDelivery, error) {
	container, err := c.container()
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM c where c.processed = false order by c.receivedAt asc"
	pager := container.NewQueryItemsPager(query, azcosmos.NewPartitionKeyString(provider), nil)

	var items []*database.WebhookDelivery

	for pager.More() {
		response, pageErr := pager.NextPage(ctx)
		if pageErr != nil {
			return nil, errors.WithStack(pageErr)
		}

		for _, b := range response.Items {
			var item database.WebhookDelivery
			if err = json.Unmarshal(b, &item); err != nil {
				return nil, errors.WithStack(err)
			}

			items = append(items, &item)
		}
	}

	return items, nil
}
