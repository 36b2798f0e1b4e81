package data

import (
	"context"
	"testing"
	"time"

	"inventory/lib/apperrors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssignmentDao(t *testing.T) (*AssignmentDao, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &AssignmentDao{DB: db, Logger: logrus.New()}, mock
}

func childItemColumns() []string {
	return []string{
		"id", "name", "sku", "description", "item_type_id", "type_name",
		"parent_item_id", "parent_name",
		"created_at", "created_by", "updated_at", "updated_by",
	}
}

func Test_AssignChildItem_Success(t *testing.T) {
	//Arrange
	dao, mock := newAssignmentDao(t)
	newParentID := int64(4)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT parent_item_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_item_id"}).AddRow(int64(3)))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(newParentID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("UPDATE inventory.child_items").
		WithArgs(newParentID, int64(7), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO inventory.assignment_history").
		WithArgs(int64(5), int64(3), newParentID, int64(7), "swap").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT c.id, c.name").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(childItemColumns()).
			AddRow(int64(5), "SSD drive", "SKU-55", "512GB", int64(2), "Disk",
				newParentID, "Rack server 4",
				now, int64(1), now, int64(7)))

	//Act
	child, err := dao.AssignChildItem(context.Background(), 5, &newParentID, 7, "swap")

	//Assert
	require.NoError(t, err)
	require.NotNil(t, child.ParentItemID)
	assert.Equal(t, newParentID, *child.ParentItemID)
	assert.Equal(t, "Rack server 4", child.ParentItem)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_AssignChildItem_Unassign_Success(t *testing.T) {
	//Arrange
	dao, mock := newAssignmentDao(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT parent_item_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_item_id"}).AddRow(int64(3)))
	mock.ExpectExec("UPDATE inventory.child_items").
		WithArgs(nil, int64(7), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO inventory.assignment_history").
		WithArgs(int64(5), int64(3), nil, int64(7), "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT c.id, c.name").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(childItemColumns()).
			AddRow(int64(5), "SSD drive", "SKU-55", "512GB", int64(2), "Disk",
				nil, nil,
				now, int64(1), now, int64(7)))

	//Act
	child, err := dao.AssignChildItem(context.Background(), 5, nil, 7, "")

	//Assert
	require.NoError(t, err)
	assert.Nil(t, child.ParentItemID)
	assert.Empty(t, child.ParentItem)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_AssignChildItem_ChildNotFound(t *testing.T) {
	//Arrange
	dao, mock := newAssignmentDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT parent_item_id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_item_id"}))
	mock.ExpectRollback()

	//Act
	child, err := dao.AssignChildItem(context.Background(), 42, nil, 7, "")

	//Assert
	assert.Nil(t, child)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_AssignChildItem_NewParentNotFound(t *testing.T) {
	//Arrange
	dao, mock := newAssignmentDao(t)
	newParentID := int64(999)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT parent_item_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_item_id"}).AddRow(int64(3)))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(newParentID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	//Act
	child, err := dao.AssignChildItem(context.Background(), 5, &newParentID, 7, "")

	//Assert
	assert.Nil(t, child)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.Contains(t, err.Error(), "parent item 999 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_AssignChildItem_AlreadyUnassignedRejected(t *testing.T) {
	//Arrange
	dao, mock := newAssignmentDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT parent_item_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_item_id"}).AddRow(nil))
	mock.ExpectRollback()

	//Act
	child, err := dao.AssignChildItem(context.Background(), 5, nil, 7, "")

	//Assert
	assert.Nil(t, child)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidOperation))
	assert.Contains(t, err.Error(), "already unassigned")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_AssignChildItem_SameParentRejected(t *testing.T) {
	//Arrange
	dao, mock := newAssignmentDao(t)
	newParentID := int64(3)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT parent_item_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_item_id"}).AddRow(int64(3)))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(newParentID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	//Act
	child, err := dao.AssignChildItem(context.Background(), 5, &newParentID, 7, "")

	//Assert
	assert.Nil(t, child)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidOperation))
	assert.Contains(t, err.Error(), "already assigned to parent item 3")
	assert.NoError(t, mock.ExpectationsWereMet())
}
