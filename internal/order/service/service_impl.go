package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/tably/internal/audit"
	auditdomain "github.com/railzwaylabs/tably/internal/audit/domain"
	"github.com/railzwaylabs/tably/internal/clock"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	"github.com/railzwaylabs/tably/internal/order/repository"
	pkgdb "github.com/railzwaylabs/tably/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  orderdomain.Repository
	audit *audit.Recorder
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Audit *audit.Recorder
}

func NewService(p ServiceParam) orderdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  repository.NewRepository(p.DB),
		audit: p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateRequest) (*orderdomain.Order, error) {
	if req.TableNumber <= 0 {
		return nil, orderdomain.ErrInvalidTable
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	order := &orderdomain.Order{
		ID:          s.genID.Generate(),
		HotelID:     req.HotelID,
		TableNumber: req.TableNumber,
		Notes:       req.Notes,
		Status:      orderdomain.OrderStatusOpen,
		Version:     1,
		Items:       s.buildItems(0, req.Items),
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := repository.NewRepository(tx)

		// The open-order uniqueness check shares the insert's transaction;
		// the partial unique index backs it against concurrent creates.
		count, err := repoTx.CountOpenByTable(ctx, req.HotelID, req.TableNumber)
		if err != nil {
			return err
		}
		if count > 0 {
			return orderdomain.ErrTableOccupied
		}

		if err := repoTx.Insert(ctx, order); err != nil {
			if pkgdb.IsUniqueViolation(err) {
				return orderdomain.ErrTableOccupied
			}
			return err
		}

		s.audit.Record(ctx, tx, audit.Entry{
			HotelID:    req.HotelID,
			ActorType:  auditdomain.ActorTypeStaff,
			Action:     auditdomain.ActionOrderCreated,
			TargetType: "order",
			TargetID:   order.ID.String(),
			Metadata: map[string]any{
				"table_number": req.TableNumber,
				"item_count":   len(req.Items),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order opened",
		zap.String("order_id", order.ID.String()),
		zap.Int("table", req.TableNumber),
	)
	return order, nil
}

func (s *Service) Update(ctx context.Context, req orderdomain.UpdateRequest) (*orderdomain.Order, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := repository.NewRepository(tx)

		swapped, err := repoTx.CompareAndSwap(ctx, req.OrderID, req.ExpectedVersion, orderdomain.OrderStatusOpen, map[string]any{
			"notes": req.Notes,
		})
		if err != nil {
			return err
		}
		if !swapped {
			return s.versionConflict(ctx, repoTx, req.OrderID)
		}

		if err := repoTx.ReplaceItems(ctx, req.OrderID, s.buildItems(req.OrderID, req.Items)); err != nil {
			return err
		}

		s.audit.Record(ctx, tx, audit.Entry{
			HotelID:    req.HotelID,
			ActorType:  auditdomain.ActorTypeStaff,
			Action:     auditdomain.ActionOrderUpdated,
			TargetType: "order",
			TargetID:   req.OrderID.String(),
			Metadata:   map[string]any{"item_count": len(req.Items)},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, req.HotelID, req.OrderID)
}

func (s *Service) GetActive(ctx context.Context, hotelID snowflake.ID, tableNumber int) (*orderdomain.Order, error) {
	if tableNumber <= 0 {
		return nil, orderdomain.ErrInvalidTable
	}
	return s.repo.FindOpenByTable(ctx, hotelID, tableNumber)
}

func (s *Service) Get(ctx context.Context, hotelID, orderID snowflake.ID) (*orderdomain.Order, error) {
	order, err := s.repo.FindByID(ctx, hotelID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) LockForBilling(ctx context.Context, orderID snowflake.ID, holderID string, ttl time.Duration) error {
	now := s.clock.Now(ctx)
	acquired, err := s.repo.AcquireLock(ctx, orderID, holderID, now.Add(ttl), now)
	if err != nil {
		return err
	}
	if acquired {
		return nil
	}
	return s.diagnoseLockFailure(ctx, orderID)
}

func (s *Service) ReleaseLock(ctx context.Context, orderID snowflake.ID, holderID string) error {
	return s.repo.ReleaseLock(ctx, orderID, holderID)
}

func (s *Service) MarkBilled(ctx context.Context, orderID, invoiceID snowflake.ID, expectedVersion int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := repository.NewRepository(tx)

		swapped, err := repoTx.CompareAndSwap(ctx, orderID, expectedVersion, orderdomain.OrderStatusOpen, map[string]any{
			"status":          orderdomain.OrderStatusBilled,
			"invoice_id":      invoiceID,
			"lock_holder":     nil,
			"lock_expires_at": nil,
		})
		if err != nil {
			return err
		}
		if !swapped {
			return s.versionConflict(ctx, repoTx, orderID)
		}

		s.audit.Record(ctx, tx, audit.Entry{
			ActorType:  auditdomain.ActorTypeSystem,
			Action:     auditdomain.ActionOrderBilled,
			TargetType: "order",
			TargetID:   orderID.String(),
			Metadata:   map[string]any{"invoice_id": invoiceID.String()},
		})
		return nil
	})
}

func (s *Service) Cancel(ctx context.Context, orderID snowflake.ID, expectedVersion int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := repository.NewRepository(tx)

		swapped, err := repoTx.CompareAndSwap(ctx, orderID, expectedVersion, orderdomain.OrderStatusOpen, map[string]any{
			"status":          orderdomain.OrderStatusCancelled,
			"lock_holder":     nil,
			"lock_expires_at": nil,
		})
		if err != nil {
			return err
		}
		if !swapped {
			return s.versionConflict(ctx, repoTx, orderID)
		}

		s.audit.Record(ctx, tx, audit.Entry{
			ActorType:  auditdomain.ActorTypeStaff,
			Action:     auditdomain.ActionOrderCancelled,
			TargetType: "order",
			TargetID:   orderID.String(),
		})
		return nil
	})
}

// versionConflict distinguishes a missing order from a stale version so the
// caller can retry intelligently.
func (s *Service) versionConflict(ctx context.Context, repo orderdomain.Repository, orderID snowflake.ID) error {
	current, err := findAnyByID(ctx, s.db, orderID)
	if err != nil {
		return err
	}
	if current == nil {
		return orderdomain.ErrOrderNotFound
	}
	return &orderdomain.VersionConflict{
		OrderID:        orderID,
		CurrentVersion: current.Version,
		CurrentStatus:  current.Status,
	}
}

func (s *Service) diagnoseLockFailure(ctx context.Context, orderID snowflake.ID) error {
	current, err := findAnyByID(ctx, s.db, orderID)
	if err != nil {
		return err
	}
	if current == nil {
		return orderdomain.ErrOrderNotFound
	}
	if current.Status != orderdomain.OrderStatusOpen {
		return orderdomain.ErrOrderNotOpen
	}
	return orderdomain.ErrOrderLocked
}

func findAnyByID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (s *Service) buildItems(orderID snowflake.ID, inputs []orderdomain.ItemInput) []orderdomain.OrderItem {
	items := make([]orderdomain.OrderItem, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, orderdomain.OrderItem{
			ID:          s.genID.Generate(),
			OrderID:     orderID,
			ReferenceID: input.ReferenceID,
			Name:        input.Name,
			UnitPrice:   input.UnitPrice,
			Quantity:    input.Quantity,
		})
	}
	return items
}

func validateItems(items []orderdomain.ItemInput) error {
	if len(items) == 0 {
		return orderdomain.ErrEmptyItems
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return orderdomain.ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return orderdomain.ErrInvalidPrice
		}
	}
	return nil
}
