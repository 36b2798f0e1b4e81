package data

import (
	"context"
	"strings"
	"testing"
	"time"

	"inventory/lib/apperrors"
	"inventory/lib/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttachmentDao(t *testing.T) (*AttachmentDao, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &AttachmentDao{DB: db, Logger: logrus.New()}, mock
}

func Test_CreateAttachment_Success(t *testing.T) {
	//Arrange
	dao, mock := newAttachmentDao(t)
	now := time.Now()
	req := &models.CreateAttachmentRequest{
		FileName:    "front-label.jpg",
		ContentType: "image/jpeg",
	}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(33)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO inventory.item_attachments").
		WithArgs(int64(33), "front-label.jpg", "image/jpeg", sqlmock.AnyArg(), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).AddRow(int64(12), now))

	//Act
	attachment, err := dao.CreateAttachment(context.Background(), 33, req, 7)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, int64(12), attachment.ID)
	assert.True(t, strings.HasPrefix(attachment.S3Key, "items/33/"))
	assert.True(t, strings.HasSuffix(attachment.S3Key, ".jpg"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CreateAttachment_ItemNotFound(t *testing.T) {
	//Arrange
	dao, mock := newAttachmentDao(t)
	req := &models.CreateAttachmentRequest{
		FileName:    "front-label.jpg",
		ContentType: "image/jpeg",
	}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	//Act
	attachment, err := dao.CreateAttachment(context.Background(), 404, req, 7)

	//Assert
	assert.Nil(t, attachment)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteAttachment_ReturnsS3Key(t *testing.T) {
	//Arrange
	dao, mock := newAttachmentDao(t)

	mock.ExpectQuery("DELETE FROM inventory.item_attachments").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"s3_key"}).AddRow("items/33/abc.jpg"))

	//Act
	s3Key, err := dao.DeleteAttachment(context.Background(), 12)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "items/33/abc.jpg", s3Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeleteAttachment_NotFound(t *testing.T) {
	//Arrange
	dao, mock := newAttachmentDao(t)

	mock.ExpectQuery("DELETE FROM inventory.item_attachments").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"s3_key"}))

	//Act
	_, err := dao.DeleteAttachment(context.Background(), 404)

	//Assert
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
