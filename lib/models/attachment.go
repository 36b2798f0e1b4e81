package models

import (
	"time"
)

// ItemAttachment is a photo or document attached to a parent item. The
// object itself lives in S3 under S3Key; this row is only metadata.
type ItemAttachment struct {
	ID           int64     `json:"id"`
	ParentItemID int64     `json:"parent_item_id"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	S3Key        string    `json:"s3_key"`
	UploadedAt   time.Time `json:"uploaded_at"`
	UploadedBy   int64     `json:"uploaded_by"`
}

// CreateAttachmentRequest represents the request payload for registering an attachment
type CreateAttachmentRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// AttachmentUploadResponse carries the presigned URL the client uploads to
type AttachmentUploadResponse struct {
	Attachment ItemAttachment `json:"attachment"`
	UploadURL  string         `json:"upload_url"`
}

// AttachmentDownloadResponse carries the presigned URL the client downloads from
type AttachmentDownloadResponse struct {
	Attachment  ItemAttachment `json:"attachment"`
	DownloadURL string         `json:"download_url"`
}

// AttachmentListResponse represents the response for listing an item's attachments
type AttachmentListResponse struct {
	Attachments []ItemAttachment `json:"attachments"`
	Total       int              `json:"total"`
}
