package data

import (
	"context"
	"database/sql"
	"fmt"
	"inventory/lib/apperrors"
	"inventory/lib/models"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AttachmentRepository defines the interface for item attachment metadata.
// The objects themselves live in S3; presigned URLs are issued by the
// handler layer.
type AttachmentRepository interface {
	// CreateAttachment registers attachment metadata for a parent item and
	// returns the row including its generated S3 key
	CreateAttachment(ctx context.Context, parentItemID int64, req *models.CreateAttachmentRequest, userID int64) (*models.ItemAttachment, error)

	// GetAttachmentByID retrieves a specific attachment by ID
	GetAttachmentByID(ctx context.Context, attachmentID int64) (*models.ItemAttachment, error)

	// GetAttachmentsByItem retrieves all attachments for a parent item
	GetAttachmentsByItem(ctx context.Context, parentItemID int64) ([]models.ItemAttachment, error)

	// DeleteAttachment removes an attachment row and returns its S3 key so
	// the caller can delete the object
	DeleteAttachment(ctx context.Context, attachmentID int64) (string, error)
}

// AttachmentDao implements AttachmentRepository interface using PostgreSQL
type AttachmentDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// CreateAttachment registers attachment metadata for a parent item
func (dao *AttachmentDao) CreateAttachment(ctx context.Context, parentItemID int64, req *models.CreateAttachmentRequest, userID int64) (*models.ItemAttachment, error) {
	var itemExists bool
	err := dao.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM inventory.parent_items WHERE id = $1)
	`, parentItemID).Scan(&itemExists)
	if err != nil {
		return nil, apperrors.StorageFailure("failed to validate parent item", err)
	}
	if !itemExists {
		return nil, apperrors.NotFound("parent item", parentItemID)
	}

	s3Key := fmt.Sprintf("items/%d/%s%s", parentItemID, uuid.NewString(), filepath.Ext(req.FileName))

	attachment := &models.ItemAttachment{
		ParentItemID: parentItemID,
		FileName:     req.FileName,
		ContentType:  req.ContentType,
		S3Key:        s3Key,
		UploadedBy:   userID,
	}

	err = dao.DB.QueryRowContext(ctx, `
		INSERT INTO inventory.item_attachments (parent_item_id, file_name, content_type, s3_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uploaded_at
	`, parentItemID, req.FileName, req.ContentType, s3Key, userID).Scan(
		&attachment.ID, &attachment.UploadedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"parent_item_id": parentItemID,
			"file_name":      req.FileName,
			"error":          err.Error(),
		}).Error("Failed to create attachment")
		return nil, apperrors.StorageFailure("failed to create attachment", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"attachment_id":  attachment.ID,
		"parent_item_id": parentItemID,
		"s3_key":         s3Key,
	}).Info("Successfully registered attachment")

	return attachment, nil
}

// GetAttachmentByID retrieves a specific attachment by ID
func (dao *AttachmentDao) GetAttachmentByID(ctx context.Context, attachmentID int64) (*models.ItemAttachment, error) {
	var attachment models.ItemAttachment

	err := dao.DB.QueryRowContext(ctx, `
		SELECT id, parent_item_id, file_name, content_type, s3_key, uploaded_at, uploaded_by
		FROM inventory.item_attachments
		WHERE id = $1
	`, attachmentID).Scan(
		&attachment.ID, &attachment.ParentItemID, &attachment.FileName,
		&attachment.ContentType, &attachment.S3Key, &attachment.UploadedAt, &attachment.UploadedBy,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("attachment", attachmentID)
	}
	if err != nil {
		return nil, apperrors.StorageFailure("failed to get attachment", err)
	}

	return &attachment, nil
}

// GetAttachmentsByItem retrieves all attachments for a parent item
func (dao *AttachmentDao) GetAttachmentsByItem(ctx context.Context, parentItemID int64) ([]models.ItemAttachment, error) {
	rows, err := dao.DB.QueryContext(ctx, `
		SELECT id, parent_item_id, file_name, content_type, s3_key, uploaded_at, uploaded_by
		FROM inventory.item_attachments
		WHERE parent_item_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`, parentItemID)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query attachments")
		return nil, apperrors.StorageFailure("failed to query attachments", err)
	}
	defer rows.Close()

	var attachments []models.ItemAttachment
	for rows.Next() {
		var attachment models.ItemAttachment
		err := rows.Scan(
			&attachment.ID, &attachment.ParentItemID, &attachment.FileName,
			&attachment.ContentType, &attachment.S3Key, &attachment.UploadedAt, &attachment.UploadedBy,
		)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to scan attachment", err)
		}
		attachments = append(attachments, attachment)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating attachments", err)
	}

	return attachments, nil
}

// DeleteAttachment removes an attachment row and returns its S3 key
func (dao *AttachmentDao) DeleteAttachment(ctx context.Context, attachmentID int64) (string, error) {
	var s3Key string
	err := dao.DB.QueryRowContext(ctx, `
		DELETE FROM inventory.item_attachments
		WHERE id = $1
		RETURNING s3_key
	`, attachmentID).Scan(&s3Key)

	if err == sql.ErrNoRows {
		return "", apperrors.NotFound("attachment", attachmentID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"attachment_id": attachmentID,
			"error":         err.Error(),
		}).Error("Failed to delete attachment")
		return "", apperrors.StorageFailure("failed to delete attachment", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"attachment_id": attachmentID,
		"s3_key":        s3Key,
	}).Info("Successfully deleted attachment")

	return s3Key, nil
}
