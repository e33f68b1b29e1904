package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
)

var orderColumnNames = []string{
	"id", "client_id", "driver_id", "vehicle_type", "vehicle_make", "vehicle_model",
	"pickup_location", "delivery_location", "pickup_date", "delivery_date", "notes",
	"total_price", "insurance_amount", "commission_amount", "driver_payout",
	"status", "driver_rating", "driver_feedback", "paid_at", "created_at", "updated_at",
}

func sampleOrder(id int64, status model.OrderStatus, driverID *int64) model.Order {
	return model.Order{
		ID:               id,
		ClientID:         1,
		DriverID:         driverID,
		VehicleType:      "sedan",
		PickupLocation:   "Berlin",
		DeliveryLocation: "Munich",
		PickupDate:       testTime,
		Price: model.PriceSplit{
			Total:      decimal.RequireFromString("1000"),
			Insurance:  decimal.RequireFromString("150"),
			Commission: decimal.RequireFromString("100"),
			Payout:     decimal.RequireFromString("750"),
		},
		Status:    status,
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
}

func orderRows(orders ...model.Order) *pgxmockv3.Rows {
	rows := pgxmockv3.NewRows(orderColumnNames)
	for _, o := range orders {
		rows.AddRow(
			o.ID, o.ClientID, o.DriverID, o.VehicleType, o.VehicleMake, o.VehicleModel,
			o.PickupLocation, o.DeliveryLocation, o.PickupDate, o.DeliveryDate, o.Notes,
			o.Price.Total, o.Price.Insurance, o.Price.Commission, o.Price.Payout,
			o.Status, o.DriverRating, o.DriverFeedback, o.PaidAt, o.CreatedAt, o.UpdatedAt,
		)
	}
	return rows
}

func int64Ptr(v int64) *int64 { return &v }

func TestOrderRepositoryCreateAndGet(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	in := sampleOrder(0, model.OrderStatusCreated, nil)
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(1), "sedan", "", "", "Berlin", "Munich", testTime, "",
			decimalArg("1000"), decimalArg("150"), decimalArg("100"), decimalArg("750"), "created").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), testTime, testTime))
	created, err := repo.Create(context.Background(), &in)
	if err != nil || created.ID != 5 {
		t.Fatalf("unexpected result: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(
		pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(),
		pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(),
		pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(),
	).WillReturnError(errors.New("insert"))
	if _, err := repo.Create(context.Background(), &in); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("SELECT id, client_id").WithArgs(int64(5)).WillReturnRows(orderRows(sampleOrder(5, model.OrderStatusCreated, nil)))
	order, err := repo.GetByID(context.Background(), 5)
	if err != nil || order.ID != 5 || !order.Price.Payout.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("unexpected order: %+v err=%v", order, err)
	}

	mock.ExpectQuery("SELECT id, client_id").WithArgs(int64(6)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 6); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryLists(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	driver := int64Ptr(7)
	mock.ExpectQuery("FROM orders WHERE client_id=").WithArgs(int64(1)).WillReturnRows(orderRows(
		sampleOrder(2, model.OrderStatusCreated, nil),
		sampleOrder(1, model.OrderStatusConfirmed, driver),
	))
	orders, err := repo.ListByClient(context.Background(), 1)
	if err != nil || len(orders) != 2 || !orders[1].AssignedTo(7) {
		t.Fatalf("unexpected result: %+v err=%v", orders, err)
	}

	mock.ExpectQuery("FROM orders WHERE driver_id=").WithArgs(int64(7)).WillReturnRows(orderRows())
	orders, err = repo.ListByDriver(context.Background(), 7)
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty result, got %+v err=%v", orders, err)
	}

	mock.ExpectQuery("FROM orders ORDER BY created_at DESC LIMIT").WithArgs(50).WillReturnError(errors.New("query"))
	if _, err := repo.ListAll(context.Background(), 50); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("NOT EXISTS").WithArgs(int64(7)).WillReturnRows(
		orderRows(sampleOrder(3, model.OrderStatusCreated, nil)).RowError(0, errors.New("row err")),
	)
	if _, err := repo.ListOpenForDriver(context.Background(), 7); err == nil || err.Error() != "row err" {
		t.Fatalf("expected row err, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE client_id=").WithArgs(int64(9)).WillReturnRows(
		pgxmockv3.NewRows(orderColumnNames).AddRow(
			"bad", int64(1), nil, "sedan", "", "", "a", "b", testTime, nil, "",
			decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
			model.OrderStatusCreated, nil, nil, nil, testTime, testTime,
		),
	)
	if _, err := repo.ListByClient(context.Background(), 9); err == nil {
		t.Fatal("expected scan error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryAssignDriver(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders SET driver_id=").WithArgs(int64(1), int64(7)).
		WillReturnRows(orderRows(sampleOrder(1, model.OrderStatusConfirmed, int64Ptr(7))))
	mock.ExpectExec("UPDATE offers SET status='rejected'").WithArgs(int64(1), int64(0)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 2))
	mock.ExpectExec("UPDATE providers SET total_orders").WithArgs(int64(7)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	order, err := repo.AssignDriver(context.Background(), 1, 7)
	if err != nil || order.Status != model.OrderStatusConfirmed || !order.AssignedTo(7) {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}

	cases := []struct {
		name   string
		status any
		err    error
		want   error
	}{
		{"lost race", model.OrderStatusConfirmed, nil, domainErrors.ErrConcurrency},
		{"terminal", model.OrderStatusCancelled, nil, domainErrors.ErrInvalidTransition},
		{"missing", nil, pgx.ErrNoRows, domainErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock.ExpectBegin()
			mock.ExpectQuery("UPDATE orders SET driver_id=").WithArgs(int64(2), int64(7)).WillReturnError(pgx.ErrNoRows)
			status := mock.ExpectQuery("SELECT status FROM orders WHERE id=").WithArgs(int64(2))
			if tc.err != nil {
				status.WillReturnError(tc.err)
			} else {
				status.WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(tc.status))
			}
			mock.ExpectRollback()
			if _, err := repo.AssignDriver(context.Background(), 2, 7); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryTransition(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	from := []model.OrderStatus{model.OrderStatusCreated, model.OrderStatusConfirmed}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders SET status=").WithArgs(int64(1), "cancelled", []string{"created", "confirmed"}).
		WillReturnRows(orderRows(sampleOrder(1, model.OrderStatusCancelled, nil)))
	mock.ExpectExec("UPDATE offers SET status='rejected'").WithArgs(int64(1), int64(0)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	if order, err := repo.Transition(context.Background(), 1, from, model.OrderStatusCancelled); err != nil || order.Status != model.OrderStatusCancelled {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders SET status=").WithArgs(int64(1), "enroute", []string{"confirmed"}).
		WillReturnRows(orderRows(sampleOrder(1, model.OrderStatusEnroute, int64Ptr(7))))
	mock.ExpectCommit()
	if _, err := repo.Transition(context.Background(), 1, []model.OrderStatus{model.OrderStatusConfirmed}, model.OrderStatusEnroute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders SET status=").WithArgs(int64(2), "enroute", []string{"confirmed"}).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM orders WHERE id=").WithArgs(int64(2)).
		WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusEnroute))
	mock.ExpectRollback()
	if _, err := repo.Transition(context.Background(), 2, []model.OrderStatus{model.OrderStatusConfirmed}, model.OrderStatusEnroute); !errors.Is(err, domainErrors.ErrConcurrency) {
		t.Fatalf("expected concurrency error, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders SET status=").WithArgs(int64(3), "enroute", []string{"confirmed"}).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM orders WHERE id=").WithArgs(int64(3)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()
	if _, err := repo.Transition(context.Background(), 3, []model.OrderStatus{model.OrderStatusConfirmed}, model.OrderStatusEnroute); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryComplete(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	driver := int64Ptr(7)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).WillReturnRows(orderRows(sampleOrder(1, model.OrderStatusEnroute, driver)))
	mock.ExpectQuery("UPDATE orders SET status='completed'").WithArgs(int64(1)).WillReturnRows(orderRows(sampleOrder(1, model.OrderStatusCompleted, driver)))
	mock.ExpectExec("INSERT INTO driver_profiles").WithArgs(int64(7), decimalArg("750")).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE providers SET completed_orders").WithArgs(int64(7)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO payouts").WithArgs(int64(1), int64(7), decimalArg("750"), "pending").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), testTime, testTime))
	mock.ExpectCommit()

	order, payout, err := repo.Complete(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusCompleted || payout.ID != 11 || !payout.Amount.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("unexpected result: order=%+v payout=%+v", order, payout)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(2)).WillReturnRows(orderRows(sampleOrder(2, model.OrderStatusConfirmed, driver)))
	mock.ExpectRollback()
	if _, _, err := repo.Complete(context.Background(), 2, 7); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(3)).WillReturnRows(orderRows(sampleOrder(3, model.OrderStatusEnroute, int64Ptr(8))))
	mock.ExpectRollback()
	if _, _, err := repo.Complete(context.Background(), 3, 7); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for other driver, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(4)).WillReturnRows(orderRows(sampleOrder(4, model.OrderStatusEnroute, driver)))
	mock.ExpectQuery("UPDATE orders SET status='completed'").WithArgs(int64(4)).WillReturnRows(orderRows(sampleOrder(4, model.OrderStatusCompleted, driver)))
	mock.ExpectExec("INSERT INTO driver_profiles").WithArgs(int64(7), decimalArg("750")).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE providers SET completed_orders").WithArgs(int64(7)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectQuery("INSERT INTO payouts").WithArgs(int64(4), int64(7), decimalArg("750"), "pending").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()
	if _, _, err := repo.Complete(context.Background(), 4, 7); !errors.Is(err, domainErrors.ErrPayoutExists) {
		t.Fatalf("expected payout exists, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()
	if _, _, err := repo.Complete(context.Background(), 5, 7); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryRate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	driver := int64Ptr(7)

	rated := sampleOrder(1, model.OrderStatusCompleted, driver)
	five := 5
	rated.DriverRating = &five

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).WillReturnRows(orderRows(sampleOrder(1, model.OrderStatusCompleted, driver)))
	mock.ExpectQuery("UPDATE orders SET driver_rating=").WithArgs(int64(1), 5, "great").WillReturnRows(orderRows(rated))
	mock.ExpectQuery("SELECT AVG").WithArgs(int64(7)).WillReturnRows(pgxmockv3.NewRows([]string{"avg"}).AddRow(decimal.RequireFromString("4.666666")))
	mock.ExpectExec("UPDATE driver_profiles SET rating=").WithArgs(int64(7), decimalArg("4.67")).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE providers SET rating=").WithArgs(int64(7), decimalArg("4.67")).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	order, err := repo.Rate(context.Background(), 1, 1, 5, "great")
	if err != nil || order.DriverRating == nil || *order.DriverRating != 5 {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).WillReturnRows(orderRows(rated))
	mock.ExpectRollback()
	if _, err := repo.Rate(context.Background(), 1, 1, 4, ""); !errors.Is(err, domainErrors.ErrAlreadyRated) {
		t.Fatalf("expected already rated, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(2)).WillReturnRows(orderRows(sampleOrder(2, model.OrderStatusEnroute, driver)))
	mock.ExpectRollback()
	if _, err := repo.Rate(context.Background(), 2, 1, 4, ""); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(3)).WillReturnRows(orderRows(sampleOrder(3, model.OrderStatusCompleted, driver)))
	mock.ExpectRollback()
	if _, err := repo.Rate(context.Background(), 3, 99, 4, ""); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for foreign client, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryDelete(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectExec("DELETE FROM orders").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("DELETE FROM orders").WithArgs(int64(2)).WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	if err := repo.Delete(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	mock.ExpectExec("DELETE FROM orders").WithArgs(int64(3)).WillReturnError(&pgconn.PgError{Code: "23503"})
	if err := repo.Delete(context.Background(), 3); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryStatistics(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectQuery("GROUP BY status").WillReturnRows(
		pgxmockv3.NewRows([]string{"status", "count"}).
			AddRow(model.OrderStatusCreated, int64(3)).
			AddRow(model.OrderStatusCompleted, int64(2)),
	)
	mock.ExpectQuery("COALESCE").WillReturnRows(
		pgxmockv3.NewRows([]string{"revenue", "commission", "insurance", "payout"}).AddRow(
			decimal.RequireFromString("2000"), decimal.RequireFromString("200"),
			decimal.RequireFromString("300"), decimal.RequireFromString("1500"),
		),
	)
	stats, err := repo.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 5 || stats.ByStatus[model.OrderStatusCompleted] != 2 || !stats.Revenue.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	mock.ExpectQuery("GROUP BY status").WillReturnError(errors.New("query"))
	if _, err := repo.Statistics(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
