package data

import (
	"context"
	"testing"
	"time"

	"inventory/lib/apperrors"
	"inventory/lib/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemDao(t *testing.T) (*ItemDao, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &ItemDao{DB: db, Logger: logrus.New()}, mock
}

func Test_CreateParentItem_Success(t *testing.T) {
	//Arrange
	dao, mock := newItemDao(t)
	now := time.Now()
	req := &models.CreateParentItemRequest{
		Name:       "Pallet 7",
		SKU:        "PLT-007",
		ItemTypeID: 1,
		LocationID: 10,
		Notes:      "received",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT category FROM inventory.item_types").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("PARENT"))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO inventory.parent_items").
		WithArgs("Pallet 7", "PLT-007", "", int64(1), int64(10), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(33), now, now))
	mock.ExpectExec("INSERT INTO inventory.move_history").
		WithArgs(int64(33), int64(10), int64(7), "received").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	//Act
	item, err := dao.CreateParentItem(context.Background(), req, 7)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, int64(33), item.ID)
	assert.Equal(t, int64(10), item.CurrentLocationID)
	assert.Equal(t, int64(7), item.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CreateParentItem_WrongCategory(t *testing.T) {
	//Arrange
	dao, mock := newItemDao(t)
	req := &models.CreateParentItemRequest{
		Name:       "SSD drive",
		SKU:        "SSD-001",
		ItemTypeID: 2,
		LocationID: 10,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT category FROM inventory.item_types").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("CHILD"))
	mock.ExpectRollback()

	//Act
	item, err := dao.CreateParentItem(context.Background(), req, 7)

	//Assert
	assert.Nil(t, item)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidOperation))
	assert.Contains(t, err.Error(), "item type 2 is not a parent item type")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CreateParentItem_LocationNotFound(t *testing.T) {
	//Arrange
	dao, mock := newItemDao(t)
	req := &models.CreateParentItemRequest{
		Name:       "Pallet 7",
		SKU:        "PLT-007",
		ItemTypeID: 1,
		LocationID: 999,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT category FROM inventory.item_types").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("PARENT"))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	//Act
	item, err := dao.CreateParentItem(context.Background(), req, 7)

	//Assert
	assert.Nil(t, item)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteItemType_BlockedByItems(t *testing.T) {
	//Arrange
	dao, mock := newItemDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_count", "child_count"}).AddRow(2, 3))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteItemType(context.Background(), 1)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "used by 5 item(s)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteItemType_Success(t *testing.T) {
	//Arrange
	dao, mock := newItemDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_count", "child_count"}).AddRow(0, 0))
	mock.ExpectExec("DELETE FROM inventory.item_types").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	//Act
	err := dao.DeleteItemType(context.Background(), 1)

	//Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteParentItem_BlockedByAssignmentHistory(t *testing.T) {
	//Arrange
	dao, mock := newItemDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(33)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteParentItem(context.Background(), 33)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "referenced in 4 historical assignment record(s)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteParentItem_CascadesChildrenAndAttachments(t *testing.T) {
	//Arrange
	dao, mock := newItemDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(33)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM inventory.item_attachments").
		WithArgs(int64(33)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM inventory.child_items").
		WithArgs(int64(33)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM inventory.parent_items").
		WithArgs(int64(33)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	//Act
	err := dao.DeleteParentItem(context.Background(), 33)

	//Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteParentItem_NotFound(t *testing.T) {
	//Arrange
	dao, mock := newItemDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM inventory.item_attachments").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM inventory.child_items").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM inventory.parent_items").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteParentItem(context.Background(), 404)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
