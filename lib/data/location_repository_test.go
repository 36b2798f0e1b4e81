package data

import (
	"context"
	"testing"

	"inventory/lib/apperrors"
	"inventory/lib/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocationDao(t *testing.T) (*LocationDao, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &LocationDao{DB: db, Logger: logrus.New()}, mock
}

func Test_DeleteLocation_Success(t *testing.T) {
	//Arrange
	dao, mock := newLocationDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM inventory.locations").
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	//Act
	err := dao.DeleteLocation(context.Background(), 10)

	//Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteLocation_BlockedByAssignedItems(t *testing.T) {
	//Arrange
	dao, mock := newLocationDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteLocation(context.Background(), 10)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "1 item(s) assigned")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteLocation_BlockedByMoveHistory(t *testing.T) {
	//Arrange
	dao, mock := newLocationDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteLocation(context.Background(), 10)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "referenced in 12 historical movement record(s)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteLocation_NotFound(t *testing.T) {
	//Arrange
	dao, mock := newLocationDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM inventory.locations").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteLocation(context.Background(), 404)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteLocationType_BlockedByLocations(t *testing.T) {
	//Arrange
	dao, mock := newLocationDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT name FROM inventory.locations").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("Aisle 1").
			AddRow("Aisle 2"))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteLocationType(context.Background(), 2)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "used by 2 location(s): Aisle 1, Aisle 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteLocationType_Success(t *testing.T) {
	//Arrange
	dao, mock := newLocationDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT name FROM inventory.locations").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectExec("DELETE FROM inventory.location_types").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	//Act
	err := dao.DeleteLocationType(context.Background(), 2)

	//Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CreateLocation_TypeNotFound(t *testing.T) {
	//Arrange
	dao, mock := newLocationDao(t)
	req := &models.CreateLocationRequest{
		Name:           "Aisle 9",
		LocationTypeID: 99,
	}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	//Act
	location, err := dao.CreateLocation(context.Background(), req, 7)

	//Assert
	assert.Nil(t, location)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
