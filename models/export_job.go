package models

import "time"

const (
	ExportQueued     = "queued"
	ExportProcessing = "processing"
	ExportDone       = "done"
	ExportFailed     = "failed"
)

type ExportJob struct {
	JobID      string     `gorm:"column:job_id;primaryKey;size:36" json:"job_id"`
	ShopDomain string     `gorm:"column:shop_domain;size:255;index" json:"shop_domain"`
	Format     string     `gorm:"column:format;size:10" json:"format"` // csv, xlsx, json
	Search     string     `gorm:"column:search;size:255" json:"search,omitempty"`
	StatusFilt string     `gorm:"column:status_filter;size:20" json:"status_filter,omitempty"`
	RangeFrom  *time.Time `gorm:"column:range_from" json:"range_from,omitempty"`
	RangeTo    *time.Time `gorm:"column:range_to" json:"range_to,omitempty"`
	Status     string     `gorm:"column:status;size:20;default:'queued'" json:"status"`
	FilePath   *string    `gorm:"column:file_path;type:text" json:"file_path,omitempty"`
	PublicURL  *string    `gorm:"column:public_url;type:text" json:"public_url,omitempty"`
	ErrorMsg   *string    `gorm:"column:error_msg;type:text" json:"error_msg,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ExportJob) TableName() string {
	return "export_jobs"
}
