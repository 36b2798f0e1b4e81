package constants

// SSM Parameter Store keys
const (
	DATABASE_RDS_ENDPOINT = "/inventory/DATABASE_RDS_ENDPOINT"
	DATABASE_PORT         = "/inventory/DATABASE_PORT"
	DATABASE_NAME         = "/inventory/DATABASE_NAME"
	DATABASE_USERNAME     = "/inventory/DATABASE_USERNAME"
	DATABASE_PASSWORD     = "/inventory/DATABASE_PASSWORD"
	SSL_MODE              = "/inventory/SSL_MODE"
	ATTACHMENT_BUCKET     = "/inventory/ATTACHMENT_BUCKET"
	ALLOWED_ORIGINS       = "/inventory/ALLOWED_ORIGINS"
	DRIVER_NAME           = "postgres"
)

// Permissions checked by the gate before any repository call
const (
	PERM_INVENTORY_READ   = "inventory:read"
	PERM_INVENTORY_WRITE  = "inventory:write"
	PERM_INVENTORY_DELETE = "inventory:delete"
	PERM_INVENTORY_ADMIN  = "inventory:admin"
)
