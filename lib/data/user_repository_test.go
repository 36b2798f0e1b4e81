package data

import (
	"context"
	"testing"

	"inventory/lib/apperrors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserDao(t *testing.T) (*UserDao, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &UserDao{DB: db, Logger: logrus.New()}, mock
}

func Test_DeleteRole_BlockedByUsers(t *testing.T) {
	//Arrange
	dao, mock := newUserDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteRole(context.Background(), 2)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "assigned to 3 user(s)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteRole_Success(t *testing.T) {
	//Arrange
	dao, mock := newUserDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM inventory.roles").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	//Act
	err := dao.DeleteRole(context.Background(), 2)

	//Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteUser_BlockedByAuditHistory(t *testing.T) {
	//Arrange
	dao, mock := newUserDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"move_count", "assignment_count"}).AddRow(10, 5))
	mock.ExpectRollback()

	//Act
	err := dao.DeleteUser(context.Background(), 7)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "actor in 15 audit record(s)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteUser_Success(t *testing.T) {
	//Arrange
	dao, mock := newUserDao(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"move_count", "assignment_count"}).AddRow(0, 0))
	mock.ExpectExec("DELETE FROM inventory.users").
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	//Act
	err := dao.DeleteUser(context.Background(), 8)

	//Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetPermissions_Success(t *testing.T) {
	//Arrange
	dao, mock := newUserDao(t)

	mock.ExpectQuery("SELECT r.permissions").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"permissions"}).
			AddRow([]byte(`{"inventory:read":true,"inventory:write":false}`)))

	//Act
	permissions, err := dao.GetPermissions(context.Background(), 7)

	//Assert
	require.NoError(t, err)
	assert.True(t, permissions["inventory:read"])
	assert.False(t, permissions["inventory:write"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetPermissions_UserNotFound(t *testing.T) {
	//Arrange
	dao, mock := newUserDao(t)

	mock.ExpectQuery("SELECT r.permissions").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"permissions"}))

	//Act
	permissions, err := dao.GetPermissions(context.Background(), 404)

	//Assert
	assert.Nil(t, permissions)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
