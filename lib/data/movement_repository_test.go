package data

import (
	"context"
	"errors"
	"testing"

	"inventory/lib/apperrors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMovementDao(t *testing.T) (*MovementDao, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &MovementDao{DB: db, Logger: logrus.New()}, mock
}

func Test_MoveParentItem_Success(t *testing.T) {
	//Arrange
	dao, mock := newMovementDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_location_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"current_location_id"}).AddRow(int64(10)))
	mock.ExpectQuery("SELECT name FROM inventory.locations").
		WithArgs(int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Warehouse B"))
	mock.ExpectExec("UPDATE inventory.parent_items").
		WithArgs(int64(20), int64(7), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO inventory.move_history").
		WithArgs(int64(1), int64(10), int64(20), int64(7), "restock").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(99)))
	mock.ExpectCommit()

	//Act
	result, err := dao.MoveParentItem(context.Background(), 1, 20, 7, "restock")

	//Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ParentItemID)
	assert.Equal(t, "Warehouse B", result.UpdatedLocation)
	assert.Equal(t, int64(99), result.HistoryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_MoveParentItem_ItemNotFound(t *testing.T) {
	//Arrange
	dao, mock := newMovementDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_location_id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"current_location_id"}))
	mock.ExpectRollback()

	//Act
	result, err := dao.MoveParentItem(context.Background(), 42, 20, 7, "")

	//Assert
	assert.Nil(t, result)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.Contains(t, err.Error(), "parent item 42 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_MoveParentItem_DestinationNotFound(t *testing.T) {
	//Arrange
	dao, mock := newMovementDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_location_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"current_location_id"}).AddRow(int64(10)))
	mock.ExpectQuery("SELECT name FROM inventory.locations").
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectRollback()

	//Act
	result, err := dao.MoveParentItem(context.Background(), 1, 999, 7, "")

	//Assert
	assert.Nil(t, result)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.Contains(t, err.Error(), "location 999 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_MoveParentItem_SameLocationRejected(t *testing.T) {
	//Arrange
	dao, mock := newMovementDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_location_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"current_location_id"}).AddRow(int64(10)))
	mock.ExpectQuery("SELECT name FROM inventory.locations").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Warehouse A"))
	mock.ExpectRollback()

	//Act
	result, err := dao.MoveParentItem(context.Background(), 1, 10, 7, "")

	//Assert
	assert.Nil(t, result)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidOperation))
	assert.Contains(t, err.Error(), `already at location "Warehouse A"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_MoveParentItem_HistoryInsertFailureRollsBack(t *testing.T) {
	//Arrange
	dao, mock := newMovementDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_location_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"current_location_id"}).AddRow(int64(10)))
	mock.ExpectQuery("SELECT name FROM inventory.locations").
		WithArgs(int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Warehouse B"))
	mock.ExpectExec("UPDATE inventory.parent_items").
		WithArgs(int64(20), int64(7), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO inventory.move_history").
		WithArgs(int64(1), int64(10), int64(20), int64(7), "").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	//Act
	result, err := dao.MoveParentItem(context.Background(), 1, 20, 7, "")

	//Assert
	assert.Nil(t, result)
	assert.True(t, apperrors.IsKind(err, apperrors.KindStorageFailure))
	assert.NoError(t, mock.ExpectationsWereMet())
}
