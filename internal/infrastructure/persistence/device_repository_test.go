package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/rental"
	"github.com/medrent/backend/internal/domain/shared"
)

// newMockDeviceRepository creates a GormDeviceRepository with a mocked SQL connection
func newMockDeviceRepository(t *testing.T) (*GormDeviceRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormDeviceRepository(gormDB), mock, mockDB
}

func TestGormDeviceRepository_FindByID(t *testing.T) {
	t.Run("finds existing device", func(t *testing.T) {
		repo, mock, mockDB := newMockDeviceRepository(t)
		defer mockDB.Close()

		deviceID := uuid.New()
		companyID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "company_id", "item_code", "serial_no", "status"}).
			AddRow(deviceID, companyID, "OXY-CONC-5L", "OC5L-0042", "AVAILABLE")

		mock.ExpectQuery(`SELECT \* FROM "rental_devices" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, deviceID, 1).
			WillReturnRows(rows)

		device, err := repo.FindByID(context.Background(), companyID, deviceID)

		assert.NoError(t, err)
		assert.NotNil(t, device)
		assert.Equal(t, "OC5L-0042", device.SerialNo)
		assert.Equal(t, rental.DeviceAvailable, device.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent device", func(t *testing.T) {
		repo, mock, mockDB := newMockDeviceRepository(t)
		defer mockDB.Close()

		deviceID := uuid.New()
		companyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "rental_devices" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, deviceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		device, err := repo.FindByID(context.Background(), companyID, deviceID)

		assert.Error(t, err)
		assert.Nil(t, device)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDeviceRepository_FindBySerialNo(t *testing.T) {
	t.Run("finds device by serial number", func(t *testing.T) {
		repo, mock, mockDB := newMockDeviceRepository(t)
		defer mockDB.Close()

		deviceID := uuid.New()
		companyID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "company_id", "item_code", "serial_no", "status"}).
			AddRow(deviceID, companyID, "BIPAP-01", "BP-0007", "RENTED_OUT")

		mock.ExpectQuery(`SELECT \* FROM "rental_devices" WHERE company_id = \$1 AND serial_no = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, "BP-0007", 1).
			WillReturnRows(rows)

		device, err := repo.FindBySerialNo(context.Background(), companyID, "BP-0007")

		assert.NoError(t, err)
		assert.Equal(t, deviceID, device.ID)
		assert.Equal(t, rental.DeviceRentedOut, device.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDeviceRepository_Lifecycle_SQLite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDeviceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	for _, serial := range []string{"OC5L-0001", "OC5L-0002"} {
		d, err := rental.NewDevice(companyID, "OXY-CONC-5L", serial)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, d))
	}
	reserved, err := rental.NewDevice(companyID, "OXY-CONC-5L", "OC5L-0003")
	require.NoError(t, err)
	require.NoError(t, reserved.Reserve(uuid.New()))
	require.NoError(t, repo.Save(ctx, reserved))

	t.Run("lists only available devices of the item", func(t *testing.T) {
		available, err := repo.FindAvailableByItemCode(ctx, companyID, "OXY-CONC-5L")
		require.NoError(t, err)
		require.Len(t, available, 2)
		assert.Equal(t, "OC5L-0001", available[0].SerialNo)
	})

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "serial_no"
		filter.OrderDir = "asc"
		filter.Filters["status"] = string(rental.DeviceReserved)
		page, err := repo.FindAll(ctx, companyID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "OC5L-0003", page.Items[0].SerialNo)
	})

	t.Run("status change round-trips", func(t *testing.T) {
		require.NoError(t, reserved.Issue())
		require.NoError(t, repo.Save(ctx, reserved))

		found, err := repo.FindByID(ctx, companyID, reserved.ID)
		require.NoError(t, err)
		assert.Equal(t, rental.DeviceRentedOut, found.Status)
		assert.NotNil(t, found.LastIssuedAt)
	})
}

func TestGormReplacementRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReplacementRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	orderID := uuid.New()

	rec := &rental.Replacement{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		OrderID:              orderID,
		OrderLineID:          uuid.New(),
		OldDeviceID:          uuid.New(),
		NewDeviceID:          uuid.New(),
		OldItemCode:          "OXY-CONC-5L",
		NewItemCode:          "OXY-CONC-5L",
		Reason:               "flow fault reported",
		ReplacedAt:           time.Now(),
	}
	require.NoError(t, repo.Save(ctx, rec))

	history, err := repo.FindByOrder(ctx, companyID, orderID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "flow fault reported", history[0].Reason)

	history, err = repo.FindByOrder(ctx, companyID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, history)
}
