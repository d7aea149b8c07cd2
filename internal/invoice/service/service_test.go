package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/tably/internal/audit"
	auditdomain "github.com/railzwaylabs/tably/internal/audit/domain"
	"github.com/railzwaylabs/tably/internal/config"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/railzwaylabs/tably/internal/invoice/repository"
	"github.com/railzwaylabs/tably/internal/observability/metrics"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type stubClock struct{ now time.Time }

func (c stubClock) Now(ctx context.Context) time.Time { return c.now }

type stubRenderer struct {
	fail bool
}

func (r stubRenderer) Render(invoice *invoicedomain.Invoice) ([]byte, string, error) {
	if r.fail {
		return nil, "", context.DeadlineExceeded
	}
	return []byte("%PDF-stub " + invoice.InvoiceNumber), "application/pdf", nil
}

type fakeBlob struct {
	enabled bool
	failPut bool
	objects map[string][]byte
}

func newFakeBlob(enabled bool) *fakeBlob {
	return &fakeBlob{enabled: enabled, objects: map[string][]byte{}}
}

func (b *fakeBlob) Enabled() bool { return b.enabled }

func (b *fakeBlob) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if b.failPut {
		return context.DeadlineExceeded
	}
	b.objects[key] = data
	return nil
}

func (b *fakeBlob) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://blob.test/" + key, nil
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Artifacts.Enabled = true
	cfg.Billing.StoreMaxRetries = 3
	cfg.Billing.StoreInitialDelay = time.Millisecond
	cfg.Storage.PresignExpiry = 15 * time.Minute
	cfg.Generator.MaxRetries = 1
	cfg.Generator.Timeout = time.Second
	return cfg
}

func newTestService(t *testing.T, cfg config.Config, blobStore *fakeBlob) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLineItem{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	log := zap.NewNop()
	m := metrics.New()

	var primary invoicedomain.Generator
	if cfg.Generator.BaseURL != "" {
		primary = newRemoteGenerator(cfg.Generator.BaseURL, cfg.Generator.APIKey, cfg.Generator.Timeout, cfg.Generator.MaxRetries)
	}

	svc := &Service{
		db:        db,
		log:       log,
		genID:     node,
		clock:     stubClock{now: time.Date(2025, 6, 1, 19, 30, 0, 0, time.UTC)},
		cfg:       cfg,
		repo:      repository.NewRepository(db),
		generator: newFallbackGenerator(primary, newLocalGenerator(), log, m),
		renderer:  stubRenderer{},
		blob:      blobStore,
		metrics:   m,
		audit:     audit.NewRecorder(log, node),
	}
	return svc, db
}

func fixtureOrder(node *snowflake.Node) *orderdomain.Order {
	hotelID := node.Generate()
	orderID := node.Generate()
	return &orderdomain.Order{
		ID:          orderID,
		HotelID:     hotelID,
		TableNumber: 4,
		Status:      orderdomain.OrderStatusOpen,
		Version:     3,
		Items: []orderdomain.OrderItem{
			{ID: node.Generate(), OrderID: orderID, ReferenceID: 1, Name: "rendang", UnitPrice: d("15.99"), Quantity: 2},
			{ID: node.Generate(), OrderID: orderID, ReferenceID: 2, Name: "es campur", UnitPrice: d("8.50"), Quantity: 1},
		},
	}
}

func composeParams() invoicedomain.ComposeParams {
	return invoicedomain.ComposeParams{
		TaxPercentage:     d("10"),
		ServicePercentage: d("5"),
		Discount:          d("5.00"),
	}
}

func TestComposeLocalPath(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), newFakeBlob(false))
	order := fixtureOrder(svc.genID)

	invoice, err := svc.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)

	require.Equal(t, order.HotelID, invoice.HotelID)
	require.Equal(t, order.ID, invoice.OrderID)
	require.Equal(t, 4, invoice.TableNumber)
	require.Regexp(t, `^INV-20250601193000-[0-9A-F]{12}$`, invoice.InvoiceNumber)

	require.True(t, d("40.48").Equal(invoice.Subtotal), "subtotal %s", invoice.Subtotal)
	require.True(t, d("5.00").Equal(invoice.Discount))
	require.True(t, d("3.548").Equal(invoice.TaxAmount), "tax %s", invoice.TaxAmount)
	require.True(t, d("1.774").Equal(invoice.ServiceAmount))
	require.True(t, d("40.802").Equal(invoice.GrandTotal), "total %s", invoice.GrandTotal)

	require.Len(t, invoice.Items, 2)
	require.Equal(t, "rendang", invoice.Items[0].DishName)
	require.True(t, d("31.98").Equal(invoice.Items[0].LineTotal))
	require.Nil(t, invoice.ArtifactKey)
}

func TestComposeEmptyOrder(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), newFakeBlob(false))
	_, err := svc.Compose(context.Background(), &orderdomain.Order{}, composeParams())
	require.ErrorIs(t, err, invoicedomain.ErrEmptyOrder)
}

func TestFallbackEquivalence(t *testing.T) {
	// A failing remote service and a disabled one must produce invoices
	// with identical pricing fields.
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	cfgFailing := testConfig()
	cfgFailing.Generator.BaseURL = failing.URL
	svcFailing, _ := newTestService(t, cfgFailing, newFakeBlob(false))

	svcDisabled, _ := newTestService(t, testConfig(), newFakeBlob(false))

	order := fixtureOrder(svcFailing.genID)

	fromFailing, err := svcFailing.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)
	fromDisabled, err := svcDisabled.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)

	require.True(t, fromFailing.Subtotal.Equal(fromDisabled.Subtotal))
	require.True(t, fromFailing.Discount.Equal(fromDisabled.Discount))
	require.True(t, fromFailing.TaxAmount.Equal(fromDisabled.TaxAmount))
	require.True(t, fromFailing.ServiceAmount.Equal(fromDisabled.ServiceAmount))
	require.True(t, fromFailing.GrandTotal.Equal(fromDisabled.GrandTotal))
}

func TestComposeUsesRemoteResultVerbatim(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"lines": [{"dish_name": "rendang", "unit_price": "15.99", "quantity": 2, "line_total": "31.98"}],
			"subtotal": "31.98",
			"discount": "0",
			"tax_amount": "3.198",
			"service_amount": "1.599",
			"grand_total": "36.777"
		}`))
	}))
	defer remote.Close()

	cfg := testConfig()
	cfg.Generator.BaseURL = remote.URL
	svc, _ := newTestService(t, cfg, newFakeBlob(false))

	invoice, err := svc.Compose(context.Background(), fixtureOrder(svc.genID), composeParams())
	require.NoError(t, err)
	require.True(t, d("36.777").Equal(invoice.GrandTotal), "total %s", invoice.GrandTotal)
	require.Len(t, invoice.Items, 1)
}

func TestComposeMalformedRemoteFallsBack(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer remote.Close()

	cfg := testConfig()
	cfg.Generator.BaseURL = remote.URL
	svc, _ := newTestService(t, cfg, newFakeBlob(false))

	invoice, err := svc.Compose(context.Background(), fixtureOrder(svc.genID), composeParams())
	require.NoError(t, err)
	require.True(t, d("40.802").Equal(invoice.GrandTotal))
}

func TestInvoiceNumbersDistinct(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		number := newInvoiceNumber(now)
		_, dup := seen[number]
		require.False(t, dup, "duplicate invoice number %s", number)
		seen[number] = struct{}{}
	}
}

func TestStoreWithArtifact(t *testing.T) {
	blobStore := newFakeBlob(true)
	svc, _ := newTestService(t, testConfig(), blobStore)
	order := fixtureOrder(svc.genID)

	invoice, err := svc.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)

	stored, err := svc.Store(context.Background(), order.HotelID, invoice)
	require.NoError(t, err)
	require.NotNil(t, stored.ArtifactKey)
	require.Contains(t, blobStore.objects, *stored.ArtifactKey)

	url, err := svc.ArtifactURL(context.Background(), order.HotelID, stored.ID)
	require.NoError(t, err)
	require.Contains(t, url, *stored.ArtifactKey)
}

func TestStoreUploadFailureDegradesArtifact(t *testing.T) {
	blobStore := newFakeBlob(true)
	blobStore.failPut = true
	svc, _ := newTestService(t, testConfig(), blobStore)
	order := fixtureOrder(svc.genID)

	invoice, err := svc.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)

	stored, err := svc.Store(context.Background(), order.HotelID, invoice)
	require.NoError(t, err)
	require.Nil(t, stored.ArtifactKey)

	// The committed record is reconciled off the request path.
	require.Eventually(t, func() bool {
		fetched, err := svc.Retrieve(context.Background(), order.HotelID, stored.ID)
		return err == nil && fetched.ArtifactKey == nil
	}, 2*time.Second, 10*time.Millisecond)

	fetched, err := svc.Retrieve(context.Background(), order.HotelID, stored.ID)
	require.NoError(t, err)
	require.NotZero(t, fetched.ID)
	require.Equal(t, stored.InvoiceNumber, fetched.InvoiceNumber)

	_, err = svc.ArtifactURL(context.Background(), order.HotelID, stored.ID)
	require.ErrorIs(t, err, invoicedomain.ErrNoArtifact)
}

func TestStoreWithoutBlobStore(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), newFakeBlob(false))
	order := fixtureOrder(svc.genID)

	invoice, err := svc.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)

	stored, err := svc.Store(context.Background(), order.HotelID, invoice)
	require.NoError(t, err)
	require.Nil(t, stored.ArtifactKey)
}

func TestRetrieveIsTenantScoped(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), newFakeBlob(false))
	order := fixtureOrder(svc.genID)

	invoice, err := svc.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)
	stored, err := svc.Store(context.Background(), order.HotelID, invoice)
	require.NoError(t, err)

	otherHotel := svc.genID.Generate()
	_, err = svc.Retrieve(context.Background(), otherHotel, stored.ID)
	require.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)
}

func TestStoreRetryAfterUnacknowledgedCommit(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), newFakeBlob(false))
	order := fixtureOrder(svc.genID)

	first, err := svc.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)
	stored, err := svc.Store(context.Background(), order.HotelID, first)
	require.NoError(t, err)

	// A replay with the same pre-generated number must land on the
	// already-committed row instead of failing.
	replay := *first
	replay.ID = svc.genID.Generate()
	replay.Items = nil
	again, err := svc.Store(context.Background(), order.HotelID, &replay)
	require.NoError(t, err)
	require.Equal(t, stored.ID, again.ID)
	require.Equal(t, stored.InvoiceNumber, again.InvoiceNumber)
}

func TestStorePersistenceFailureIsGeneric(t *testing.T) {
	svc, db := newTestService(t, testConfig(), newFakeBlob(false))
	order := fixtureOrder(svc.genID)

	invoice, err := svc.Compose(context.Background(), order, composeParams())
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(&invoicedomain.Invoice{}))

	_, err = svc.Store(context.Background(), order.HotelID, invoice)
	require.ErrorIs(t, err, invoicedomain.ErrPersistenceFailed)
}
