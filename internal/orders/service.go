package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/internal/notifications"
	"github.com/vigneshnair/bazaarly-backend/internal/payments"
	"github.com/vigneshnair/bazaarly-backend/internal/products"
	"github.com/vigneshnair/bazaarly-backend/internal/users"
	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	"github.com/vigneshnair/bazaarly-backend/pkg/db/models"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/pagination"
)

// amountTolerance absorbs representation noise on confirm, not
// business slippage. Anything beyond a paisa is a mismatch.
var amountTolerance = decimal.RequireFromString("0.01")

// Identity is the authenticated caller placing or reading orders.
type Identity struct {
	AccountID uuid.UUID
	Role      enums.Role
}

// Service drives the purchase workflow: placement with an atomic stock
// decrement, deferred-payment confirmation, cancellation, and
// role-scoped listing.
type Service interface {
	PlaceOrder(ctx context.Context, customerID uuid.UUID, req PlaceOrderRequest) (*PlaceOrderResult, error)
	ConfirmPayment(ctx context.Context, customerID, orderID uuid.UUID, req ConfirmPaymentRequest) (*OrderDTO, error)
	Cancel(ctx context.Context, customerID, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, caller Identity, params pagination.Params) (*pagination.Page[OrderDTO], error)
	Get(ctx context.Context, caller Identity, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	db       *db.Client
	notifier notifications.Notifier
	links    *payments.LinkBuilder
	verifier *payments.Verifier
}

// ServiceParams bundles the order workflow dependencies. Links and
// Verifier are optional; without them deferred payments are rejected
// and callback signatures are not checked.
type ServiceParams struct {
	DB       *db.Client
	Notifier notifications.Notifier
	Links    *payments.LinkBuilder
	Verifier *payments.Verifier
}

// NewService constructs the order workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Notifier == nil {
		params.Notifier = notifications.Noop{}
	}
	return &service{
		db:       params.DB,
		notifier: params.Notifier,
		links:    params.Links,
		verifier: params.Verifier,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, customerID uuid.UUID, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	if req.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !req.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	method := enums.PaymentMethodCOD
	if strings.TrimSpace(req.PaymentMethod) != "" {
		parsed, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
		}
		method = parsed
	}
	if method.Deferred() && s.links == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deferred payments are not available")
	}

	var (
		order       *models.Order
		vendor      *models.Account
		paymentLink string
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := products.NewRepository(tx)
		accountRepo := users.NewRepository(tx)

		product, err := productRepo.FindByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		// Stock check and reservation are one statement; losing a race
		// shows up as zero affected rows, never as oversell.
		affected, err := productRepo.DecrementStock(ctx, product.ID, req.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve stock")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for requested quantity")
		}

		customer, err := accountRepo.FindByID(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
		}
		vendor, err = accountRepo.FindByID(ctx, product.VendorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vendor")
		}

		total := product.Price.Mul(req.Quantity).Round(2)
		order = &models.Order{
			ProductID:       product.ID,
			CustomerID:      customer.ID,
			VendorID:        product.VendorID,
			Quantity:        req.Quantity,
			UnitPrice:       product.Price,
			Total:           total,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   method,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			DeliveryMobile:  deliveryMobile(req.Mobile, customer),
			DeliveryAddress: deliveryAddress(req.Address, customer),
		}
		if _, err := NewRepository(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		if method.Deferred() {
			ref := newTransactionRef()
			paymentLink = s.links.Build(total, ref, "Bazaarly order "+shortID(order.ID))
			intent := &models.PaymentIntent{
				OrderID:        order.ID,
				Amount:         total,
				Status:         enums.PaymentStatusPending,
				UPILink:        paymentLink,
				TransactionRef: &ref,
			}
			if _, err := payments.NewRepository(tx).Create(ctx, intent); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment intent")
			}
			order.PaymentStatus = enums.PaymentStatusPending
			if err := tx.WithContext(ctx).Model(order).
				Update("payment_status", enums.PaymentStatusPending).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark payment pending")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notified := s.notifier.Enqueue(ctx, notifications.Message{
		Kind: notifications.KindOrderPlaced,
		To:   phoneOf(vendor),
		Body: fmt.Sprintf("New order %s: qty %s for a total of %s.",
			shortID(order.ID), order.Quantity, order.Total.StringFixed(2)),
	})

	return &PlaceOrderResult{
		Order:       fromModel(order),
		PaymentLink: paymentLink,
		Notified:    notified,
	}, nil
}

func (s *service) ConfirmPayment(ctx context.Context, customerID, orderID uuid.UUID, req ConfirmPaymentRequest) (*OrderDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	if strings.TrimSpace(req.TransactionRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	var (
		order          *models.Order
		vendor         *models.Account
		alreadySettled bool
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := NewRepository(tx)

		loaded, err := s.loadOwned(ctx, orderRepo, customerID, orderID)
		if err != nil {
			return err
		}
		order = loaded

		// Re-confirming a settled order is a no-op success.
		if order.PaymentStatus == enums.PaymentStatusPaid {
			alreadySettled = true
			return nil
		}
		if order.Status == enums.OrderStatusCanceled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is canceled")
		}

		if req.Amount.Sub(order.Total).Abs().GreaterThan(amountTolerance) {
			return pkgerrors.New(pkgerrors.CodeAmountMismatch,
				fmt.Sprintf("amount %s does not match order total %s",
					req.Amount.StringFixed(2), order.Total.StringFixed(2)))
		}
		if s.verifier != nil && req.Signature != "" {
			if !s.verifier.Verify(order.ID.String(), req.TransactionRef, req.Signature) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, "payment signature verification failed")
			}
		}

		now := time.Now().UTC()
		intentRepo := payments.NewRepository(tx)
		intent, err := intentRepo.FindByOrderID(ctx, order.ID)
		switch {
		case err == nil:
			if err := intentRepo.MarkPaid(ctx, intent.ID, req.TransactionRef, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle payment intent")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Immediate methods have no companion intent.
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment intent")
		}

		if err := orderRepo.MarkPaid(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm order")
		}
		order.Status = enums.OrderStatusConfirmed
		order.PaymentStatus = enums.PaymentStatusPaid

		vendor, err = users.NewRepository(tx).FindByID(ctx, order.VendorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vendor")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadySettled {
		return fromModel(order), nil
	}

	s.notifier.Enqueue(ctx, notifications.Message{
		Kind: notifications.KindPaymentConfirmed,
		To:   phoneOf(vendor),
		Body: fmt.Sprintf("Payment of %s received for order %s.",
			order.Total.StringFixed(2), shortID(order.ID)),
	})
	return fromModel(order), nil
}

func (s *service) Cancel(ctx context.Context, customerID, orderID uuid.UUID) (*OrderDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}

	var (
		order  *models.Order
		vendor *models.Account
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := NewRepository(tx)

		loaded, err := s.loadOwned(ctx, orderRepo, customerID, orderID)
		if err != nil {
			return err
		}
		order = loaded

		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order already %s", order.Status))
		}

		if err := products.NewRepository(tx).RestoreStock(ctx, order.ProductID, order.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
		}
		if err := orderRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusCanceled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
		}
		order.Status = enums.OrderStatusCanceled

		vendor, err = users.NewRepository(tx).FindByID(ctx, order.VendorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vendor")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Enqueue(ctx, notifications.Message{
		Kind: notifications.KindOrderCanceled,
		To:   phoneOf(vendor),
		Body: fmt.Sprintf("Order %s was canceled by the customer.", shortID(order.ID)),
	})
	return fromModel(order), nil
}

func (s *service) List(ctx context.Context, caller Identity, params pagination.Params) (*pagination.Page[OrderDTO], error) {
	if caller.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}

	filter := ListFilter{}
	switch caller.Role {
	case enums.RoleAdmin:
		// Admins see everything.
	case enums.RoleVendor:
		filter.VendorID = &caller.AccountID
	default:
		filter.CustomerID = &caller.AccountID
	}

	rows, err := NewRepository(s.db.DB()).List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	dtos := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, *fromModel(&row))
	}
	page := pagination.BuildPage(dtos, params.Limit, func(o OrderDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &page, nil
}

func (s *service) Get(ctx context.Context, caller Identity, orderID uuid.UUID) (*OrderDTO, error) {
	if caller.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}

	order, err := NewRepository(s.db.DB()).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if !canSee(caller, order) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return fromModel(order), nil
}

// loadOwned fetches the order and verifies the caller owns it. Both a
// missing row and someone else's order come back as NotFound.
func (s *service) loadOwned(ctx context.Context, repo *Repository, customerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func canSee(caller Identity, order *models.Order) bool {
	switch caller.Role {
	case enums.RoleAdmin:
		return true
	case enums.RoleVendor:
		return order.VendorID == caller.AccountID || order.CustomerID == caller.AccountID
	default:
		return order.CustomerID == caller.AccountID
	}
}

func deliveryMobile(supplied *string, account *models.Account) string {
	if supplied != nil && strings.TrimSpace(*supplied) != "" {
		return strings.TrimSpace(*supplied)
	}
	if account.Phone != nil {
		return *account.Phone
	}
	return ""
}

func deliveryAddress(supplied *string, account *models.Account) string {
	if supplied != nil && strings.TrimSpace(*supplied) != "" {
		return strings.TrimSpace(*supplied)
	}
	if account.Address != nil {
		return *account.Address
	}
	return ""
}

func phoneOf(account *models.Account) string {
	if account == nil || account.Phone == nil {
		return ""
	}
	return *account.Phone
}

func newTransactionRef() string {
	return "BZ" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
