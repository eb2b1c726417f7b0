package models

// AuditLog records every mutating API call.
type AuditLog struct {
	Base
	Action       string `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType string `gorm:"type:varchar(50);not null;index:idx_audit_logs_resource,priority:1" json:"resource_type"`
	ResourceID   string `gorm:"type:varchar(36);index:idx_audit_logs_resource,priority:2" json:"resource_id"`
	IPAddress    string `gorm:"type:varchar(45)" json:"ip_address"`
	RequestID    string `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	Changes      string `gorm:"type:text" json:"changes,omitempty"`
}
